package tools_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/0x6d61/futu-mcp/internal/bridge"
	"github.com/0x6d61/futu-mcp/internal/tools"
)

const testScriptsDir = "/opt/futu/scripts"

// fakeRunner は起動されたコマンドを記録し、固定の出力またはエラーを返す。
type fakeRunner struct {
	mu     sync.Mutex
	calls  []bridge.Command
	stdout string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, c bridge.Command) (*bridge.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	return &bridge.Result{Stdout: strings.TrimSpace(f.stdout)}, nil
}

func (f *fakeRunner) spawned() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeRunner) lastArgs(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no process was spawned")
	}
	return f.calls[len(f.calls)-1].Args
}

func builtinRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	if _, err := r.LoadBuiltin(tools.ScriptBinder("python", testScriptsDir)); err != nil {
		t.Fatalf("LoadBuiltin: %v", err)
	}
	return r
}

func builtinSpec(t *testing.T, name string) *tools.ToolSpec {
	t.Helper()
	spec, _, ok := builtinRegistry(t).Lookup(name)
	if !ok {
		t.Fatalf("%s not registered", name)
	}
	return spec
}

func assertStringSliceEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}
