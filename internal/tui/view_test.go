package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestView_NotReady(t *testing.T) {
	m := New(context.Background(), builtinSpecs(t), &fakeInvoker{})

	if output := m.View(); !strings.Contains(output, "Starting futu-mcp") {
		t.Errorf("expected loading message when not ready, got %q", output)
	}
}

func TestView_Ready(t *testing.T) {
	m := newReadyModel(t, &fakeInvoker{})

	output := stripANSI(m.View())

	for _, want := range []string{"FUTU-MCP", "TOOLS", "get_market_snapshot", "[Tools]"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestView_NoTools(t *testing.T) {
	m := New(context.Background(), nil, &fakeInvoker{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)

	output := stripANSI(m.View())
	if !strings.Contains(output, "No tools") {
		t.Error("expected 'No tools' in status bar")
	}
	if !strings.Contains(output, "ツールが登録されていません") {
		t.Error("expected empty catalog hint in viewport")
	}
}

func TestRenderInputBar_FocusInputShowsToolName(t *testing.T) {
	m := newReadyModel(t, &fakeInvoker{})
	m.focusInput()

	if out := stripANSI(m.renderInputBar()); !strings.Contains(out, "get_market_snapshot >") {
		t.Errorf("expected tool prompt, got %q", out)
	}
}

func TestRenderFocusIndicator(t *testing.T) {
	m := newReadyModel(t, &fakeInvoker{})
	m.focus = FocusViewport

	if out := stripANSI(m.renderFocusIndicator()); out != "[TOOLS] [RESULT] [ARGS]" {
		t.Errorf("got %q", out)
	}
}

func TestView_ConfirmQuit_ShowsOverlay(t *testing.T) {
	m := newReadyModel(t, &fakeInvoker{})
	m.confirmQuit = true

	if output := stripANSI(m.View()); !strings.Contains(output, "Quit futu-mcp console?") {
		t.Error("expected quit dialog in view")
	}
}

func TestTruncateAndSkipVisual_Wide(t *testing.T) {
	s := "订阅abc"
	if got := truncateVisual(s, 3); got != "订 " {
		t.Errorf("truncateVisual = %q", got)
	}
	if got := skipVisual(s, 4); got != "abc" {
		t.Errorf("skipVisual = %q", got)
	}
}
