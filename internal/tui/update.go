package tui

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Update implements tea.Model and routes all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleResize(msg.Width, msg.Height)
		m.ready = true
		m.rebuildViewport()
		return m, nil

	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			m.rebuildViewport()
			return m, cmd
		}
		return m, nil

	case resultMsg:
		m.running = false
		m.history = append(m.history, msg.entry)
		m.syncListItems()
		m.rebuildViewport()
		return m, nil

	case tea.KeyMsg:
		// Quit confirmation dialog intercepts all keys when active.
		if m.confirmQuit {
			return m.handleConfirmQuitKey(msg)
		}

		switch msg.String() {
		case "ctrl+c":
			m.confirmQuit = true
			return m, nil
		case "tab":
			m.cycleFocus()
			return m, nil
		case "ctrl+o":
			m.expanded = !m.expanded
			m.rebuildViewport()
			return m, nil
		}

		switch m.focus {
		case FocusList:
			if msg.String() == "enter" {
				m.focusInput()
				return m, nil
			}
			m.list, cmd = m.list.Update(msg)
			cmds = append(cmds, cmd)
			if idx := m.list.Index(); idx != m.selected {
				m.selected = idx
				m.rebuildViewport()
			}

		case FocusViewport:
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)

		case FocusInput:
			switch msg.String() {
			case "enter":
				cmds = append(cmds, m.submitInput())
			case "esc":
				m.focus = FocusList
				m.input.Blur()
			default:
				m.input, cmd = m.input.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// handleResize recomputes all component dimensions to fit the new terminal size.
func (m *Model) handleResize(w, h int) {
	m.width = w
	m.height = h

	const (
		statusBarH  = 1
		inputAreaH  = 3 // rounded border top + bottom + 1 line
		paneVBorder = 2 // top + bottom borders for panes
	)

	paneH := h - statusBarH - inputAreaH - paneVBorder
	if paneH < 4 {
		paneH = 4
	}

	m.list.SetSize(leftPaneOuterWidth-4, paneH)

	vpW := w - leftPaneOuterWidth - 2
	if vpW < 10 {
		vpW = 10
	}

	if !m.ready {
		m.viewport = viewport.New(vpW, paneH)
	} else {
		m.viewport.Width = vpW
		m.viewport.Height = paneH
	}

	m.input.Width = w - 8
}

// cycleFocus cycles List -> Input -> Viewport -> List.
func (m *Model) cycleFocus() {
	switch m.focus {
	case FocusList:
		m.focusInput()
	case FocusInput:
		m.focus = FocusViewport
		m.input.Blur()
	case FocusViewport:
		m.focus = FocusList
	}
}

func (m *Model) focusInput() {
	m.focus = FocusInput
	m.input.Focus()
}

// submitInput は入力された JSON 引数で選択中のツールを呼び出す。
// 空入力は {} として扱う。実行中は受け付けない。
func (m *Model) submitInput() tea.Cmd {
	s := m.activeSpec()
	if s == nil || m.running || m.invoker == nil {
		return nil
	}
	args := strings.TrimSpace(m.input.Value())
	if args == "" {
		args = "{}"
	}
	m.input.Reset()
	m.running = true
	m.rebuildViewport()
	return tea.Batch(invokeCmd(m.ctx, m.invoker, s.Name, args), m.spinner.Tick)
}

// invokeCmd はツール呼び出しを Bubble Tea コマンドとして非同期に実行する。
func invokeCmd(ctx context.Context, inv Invoker, tool, args string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		env, err := inv.InvokeJSON(ctx, tool, json.RawMessage(args))
		return resultMsg{entry: entry{
			tool: tool,
			args: args,
			env:  env,
			err:  err,
			at:   start,
			took: time.Since(start),
		}}
	}
}

// handleConfirmQuitKey processes key events in the quit confirmation dialog.
func (m Model) handleConfirmQuitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return m, tea.Quit
	case "n", "N", "esc":
		m.confirmQuit = false
		return m, nil
	}
	// Other keys: ignore, stay in confirmation dialog.
	return m, nil
}
