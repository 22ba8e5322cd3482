package tui

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// stripANSI は ANSI エスケープシーケンスを除去する（テスト用ヘルパー）。
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

type fakeInvoker struct {
	mu    sync.Mutex
	calls []string
	env   *tools.Envelope
	err   error
}

func (f *fakeInvoker) InvokeJSON(_ context.Context, name string, args json.RawMessage) (*tools.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name+" "+string(args))
	return f.env, f.err
}

var errBoom = errors.New("boom")

func builtinSpecs(t *testing.T) []*tools.ToolSpec {
	t.Helper()
	reg := tools.NewRegistry()
	if _, err := reg.LoadBuiltin(tools.ScriptBinder("python", "/opt/scripts")); err != nil {
		t.Fatal(err)
	}
	return reg.List()
}

// newReadyModel は 120x40 にリサイズ済みの Model を返す。
func newReadyModel(t *testing.T, inv Invoker) Model {
	t.Helper()
	m := New(context.Background(), builtinSpecs(t), inv)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// collect は cmd を実行し、Batch を展開したメッセージ列を返す。
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}
