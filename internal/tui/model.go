// Package tui implements the Bubble Tea console for futu-mcp.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// FocusState tracks which pane has keyboard focus.
type FocusState int

const (
	FocusList     FocusState = iota // left pane: tool list
	FocusViewport                   // right pane: description and results
	FocusInput                      // bottom: JSON arguments
)

// leftPaneOuterWidth is the total rendered width of the left pane (borders included).
const leftPaneOuterWidth = 32

// Invoker はツールを呼び出す。*tools.Dispatcher が満たす。
type Invoker interface {
	InvokeJSON(ctx context.Context, name string, args json.RawMessage) (*tools.Envelope, error)
}

// resultMsg は invokeCmd の完了通知。
type resultMsg struct {
	entry entry
}

// entry は console で実行した 1 回分の結果。
type entry struct {
	tool string
	args string
	env  *tools.Envelope
	err  error
	at   time.Time
	took time.Duration
}

// Model is the root Bubble Tea model for the futu-mcp console.
type Model struct {
	width    int
	height   int
	ready    bool
	focus    FocusState
	specs    []*tools.ToolSpec
	selected int // index into specs
	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	ctx         context.Context
	invoker     Invoker
	history     []entry
	running     bool
	expanded    bool
	confirmQuit bool

	// glamour のレンダリング結果（"tool@width" 単位）
	docCache map[string]string
}

// toolListItem wraps *tools.ToolSpec to satisfy the list.Item interface.
type toolListItem struct {
	s    *tools.ToolSpec
	last *entry
}

func (i toolListItem) Title() string { return i.s.Name }

func (i toolListItem) Description() string {
	if i.last == nil {
		return fmt.Sprintf("%d params", len(i.s.Params))
	}
	if i.last.err != nil || i.last.env.IsError {
		return resultFailedStyle.Render("✗") + " " + i.last.at.Format("15:04:05")
	}
	return resultOKStyle.Render("✓") + " " + i.last.at.Format("15:04:05")
}

func (i toolListItem) FilterValue() string { return i.s.Name }

// New は specs を一覧に並べた Model を返す。ctx は呼び出しに渡される。
func New(ctx context.Context, specs []*tools.ToolSpec, inv Invoker) Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = true
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(colorPrimary)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(colorSecondary)

	l := list.New(nil, d, leftPaneOuterWidth-4, 20)
	l.Title = "TOOLS"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(colorTitle).
		Bold(true).
		Padding(0, 1)

	ti := textinput.New()
	ti.Placeholder = `{"code_list": ["HK.00700"]}`
	ti.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		specs:    specs,
		list:     l,
		input:    ti,
		spinner:  sp,
		focus:    FocusList,
		ctx:      ctx,
		invoker:  inv,
		docCache: make(map[string]string),
	}
	m.syncListItems()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// activeSpec returns the currently selected tool, or nil if none.
func (m *Model) activeSpec() *tools.ToolSpec {
	if m.selected < 0 || m.selected >= len(m.specs) {
		return nil
	}
	return m.specs[m.selected]
}

// lastEntry は tool の最新の結果を返す。
func (m *Model) lastEntry(tool string) *entry {
	for i := len(m.history) - 1; i >= 0; i-- {
		if m.history[i].tool == tool {
			return &m.history[i]
		}
	}
	return nil
}

// syncListItems refreshes list items to reflect the latest results.
func (m *Model) syncListItems() {
	items := make([]list.Item, len(m.specs))
	for i, s := range m.specs {
		items[i] = toolListItem{s: s, last: m.lastEntry(s.Name)}
	}
	m.list.SetItems(items)
}

// toolDoc は選択中ツールの説明を glamour で描画する。失敗時は Markdown のまま返す。
func (m *Model) toolDoc(s *tools.ToolSpec) string {
	key := fmt.Sprintf("%s@%d", s.Name, m.viewport.Width)
	if doc, ok := m.docCache[key]; ok {
		return doc
	}
	md := ToolMarkdown(s)
	doc, err := RenderMarkdown(md, m.viewport.Width)
	if err != nil {
		doc = md
	}
	m.docCache[key] = doc
	return doc
}

// rebuildViewport regenerates the viewport content for the active tool.
func (m *Model) rebuildViewport() {
	s := m.activeSpec()
	if s == nil {
		m.viewport.SetContent("  ツールが登録されていません。\n\n  --tools-dir に YAML 定義を置いてください。")
		return
	}

	var sb strings.Builder
	sb.WriteString(m.toolDoc(s))

	for _, e := range m.history {
		if e.tool != s.Name {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(m.renderEntry(e))
	}
	if m.running {
		sb.WriteString("\n" + runningStyle.Render(m.spinner.View()+" Running "+s.Name+"...") + "\n")
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

// renderEntry は 1 回分の呼び出しを描画する。
// Format: ● {"args"} 15:04:05 (120ms) #1a2b3c4d
func (m *Model) renderEntry(e entry) string {
	var sb strings.Builder
	ts := lipgloss.NewStyle().Foreground(colorMuted).Render(e.at.Format("15:04:05"))
	cmd := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render("● " + e.args)
	took := lipgloss.NewStyle().Foreground(colorMuted).Render("(" + formatDuration(e.took) + ")")
	sb.WriteString(cmd + " " + ts + " " + took)
	if e.env != nil && e.env.InvocationID != "" {
		id := e.env.InvocationID
		if len(id) > 8 {
			id = id[:8]
		}
		sb.WriteString(" " + lipgloss.NewStyle().Foreground(colorMuted).Render("#"+id))
	}
	sb.WriteString("\n")

	if e.err != nil {
		sb.WriteString(resultFailedStyle.Render("✗ "+e.err.Error()) + "\n")
		return sb.String()
	}
	sb.WriteString(RenderEnvelope(e.env, m.viewport.Width, m.expanded))
	return sb.String()
}
