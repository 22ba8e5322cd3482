package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View implements tea.Model and renders the full console layout.
func (m Model) View() string {
	if !m.ready {
		return "\n  ⚡ Starting futu-mcp console...\n"
	}

	statusBar := m.renderStatusBar()

	// ── Left pane: tool list ─────────────────────────────────────────────────
	leftStyle := leftPaneStyle
	if m.focus == FocusList {
		leftStyle = leftPaneActiveStyle
	}
	leftPane := leftStyle.Width(leftPaneOuterWidth - 2).Render(m.list.View())

	// ── Right pane: description and results ──────────────────────────────────
	rightContentW := m.width - leftPaneOuterWidth - 2
	rightStyle := rightPaneStyle
	if m.focus == FocusViewport {
		rightStyle = rightPaneActiveStyle
	}
	rightPane := rightStyle.Width(rightContentW).Render(m.viewport.View())

	panesRow := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	base := lipgloss.JoinVertical(lipgloss.Left, statusBar, panesRow, m.renderInputBar())

	if m.confirmQuit {
		base = m.overlayCenter(base, m.renderConfirmQuit())
	}
	return base
}

// renderStatusBar renders the single-line header with app name and focus hints.
func (m Model) renderStatusBar() string {
	appName := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("⚡ FUTU-MCP")

	var toolInfo string
	if s := m.activeSpec(); s != nil {
		toolInfo = "Tool: " + lipgloss.NewStyle().Foreground(colorSecondary).Render(s.Name)
		if m.running {
			toolInfo += " " + runningStyle.Render("[running]")
		}
	} else {
		toolInfo = lipgloss.NewStyle().Foreground(colorMuted).Render("No tools")
	}

	hint := lipgloss.NewStyle().Foreground(colorMuted).Render("[Tab] Switch pane  [Enter] Invoke  [Ctrl+O] Fold")
	left := appName + "  " + toolInfo + "  " + m.renderFocusIndicator()
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(left)-lipgloss.Width(hint)-2))

	return statusBarStyle.Width(m.width).Render(left + gap + hint)
}

// renderFocusIndicator shows which pane is currently focused.
func (m Model) renderFocusIndicator() string {
	dim := lipgloss.NewStyle().Foreground(colorMuted)
	active := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	list := dim.Render("[TOOLS]")
	result := dim.Render("[RESULT]")
	args := dim.Render("[ARGS]")

	switch m.focus {
	case FocusList:
		list = active.Render("[TOOLS]")
	case FocusViewport:
		result = active.Render("[RESULT]")
	case FocusInput:
		args = active.Render("[ARGS]")
	}

	return fmt.Sprintf("%s %s %s", list, result, args)
}

// renderInputBar renders the bottom input area with context-aware prefix.
func (m Model) renderInputBar() string {
	w := m.width - 2
	switch m.focus {
	case FocusList:
		prefix := lipgloss.NewStyle().Foreground(colorMuted).Render("[Tools] ↑↓ Select  [Enter] Edit args")
		return inputBarStyle.Width(w).Render(prefix)
	case FocusViewport:
		prefix := lipgloss.NewStyle().Foreground(colorMuted).Render("[Result] ↑↓ Scroll")
		return inputBarStyle.Width(w).Render(prefix)
	}
	label := "args"
	if s := m.activeSpec(); s != nil {
		label = fitColumn(s.Name, 24)
	}
	prefix := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Render(strings.TrimRight(label, " ") + " >")
	return inputBarActiveStyle.Width(w).Render(prefix + " " + m.input.View())
}

// renderConfirmQuit renders the centered quit confirmation dialog.
func (m Model) renderConfirmQuit() string {
	title := lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true).
		Render("Quit futu-mcp console?")

	hint := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render("[Y] Yes  [N] No  [Esc] Cancel")

	content := fmt.Sprintf("\n  %s\n\n  %s\n", title, hint)

	return confirmQuitBoxStyle.Render(content)
}

// overlayCenter places the overlay string in the center of the base string.
func (m Model) overlayCenter(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayH := len(overlayLines)
	overlayW := 0
	for _, line := range overlayLines {
		if w := lipgloss.Width(line); w > overlayW {
			overlayW = w
		}
	}

	startRow := max(0, (m.height-overlayH)/2)
	startCol := max(0, (m.width-overlayW)/2)

	for len(baseLines) < startRow+overlayH {
		baseLines = append(baseLines, strings.Repeat(" ", m.width))
	}

	for i, oLine := range overlayLines {
		row := startRow + i
		baseLine := baseLines[row]
		for lipgloss.Width(baseLine) < startCol {
			baseLine += " "
		}

		// 表示幅ベースで左右を切り出す（全角文字対策）
		left := truncateVisual(baseLine, startCol)
		rightStart := startCol + lipgloss.Width(oLine)
		right := ""
		if lipgloss.Width(baseLine) > rightStart {
			right = skipVisual(baseLine, rightStart)
		}

		baseLines[row] = left + oLine + right
	}

	return strings.Join(baseLines, "\n")
}

// truncateVisual returns the first n visual columns of a string.
func truncateVisual(s string, n int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > n {
			return s[:i] + strings.Repeat(" ", n-w)
		}
		w += rw
	}
	return s + strings.Repeat(" ", n-w)
}

// skipVisual returns everything after the first n visual columns.
func skipVisual(s string, n int) string {
	w := 0
	for i, r := range s {
		if w >= n {
			return s[i:]
		}
		w += runewidth.RuneWidth(r)
	}
	return ""
}
