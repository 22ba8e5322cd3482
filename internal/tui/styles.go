package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorPrimary      = lipgloss.Color("#00D7FF") // cyan: focus
	colorSecondary    = lipgloss.Color("#AF87FF") // purple: tool name
	colorSuccess      = lipgloss.Color("#87FF5F") // green: OK
	colorWarning      = lipgloss.Color("#FFD700") // yellow: running
	colorDanger       = lipgloss.Color("#FF5555") // red: FAILED
	colorMuted        = lipgloss.Color("#555577") // dim gray: timestamps / hints
	colorBorder       = lipgloss.Color("#333355") // default border
	colorBorderActive = lipgloss.Color("#00D7FF") // focused border
	colorTitle        = lipgloss.Color("#FFFFFF") // pane titles
)

// Pane borders
var (
	leftPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	leftPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)

	rightPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	rightPaneActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)
)

// Input bar
var (
	inputBarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)

	inputBarActiveStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorderActive)
)

// Status bar (top)
var statusBarStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("#0D0D1A")).
	Foreground(colorPrimary).
	Padding(0, 1)

// Quit confirmation dialog (centered overlay)
var confirmQuitBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorDanger).
	Padding(0, 2)

// 結果ヘッダー
var (
	resultOKStyle     = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	resultFailedStyle = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	resultBodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	runningStyle      = lipgloss.NewStyle().Foreground(colorWarning)
)

// foldIndicatorStyle は折りたたみ行の「… +N lines (ctrl+o)」スタイル。
var foldIndicatorStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
