package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// CatalogMarkdown は登録済みツールの一覧を Markdown にする。
func CatalogMarkdown(specs []*tools.ToolSpec) string {
	var sb strings.Builder
	sb.WriteString("# Tools\n\n")
	if len(specs) == 0 {
		sb.WriteString("_no tools registered_\n")
		return sb.String()
	}
	for i, s := range specs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(ToolMarkdown(s))
	}
	return sb.String()
}

// ToolMarkdown は 1 ツールの説明とパラメータ表を Markdown にする。
func ToolMarkdown(s *tools.ToolSpec) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n%s\n\n", s.Name, s.Description)
	if len(s.Params) == 0 {
		sb.WriteString("_no parameters_\n")
		return sb.String()
	}
	sb.WriteString("| parameter | type | required | default | description |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for i := range s.Params {
		p := &s.Params[i]
		required := ""
		if p.Required {
			required = "yes"
		}
		def := "-"
		if p.Default != nil {
			def = fmt.Sprint(p.Default)
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n",
			p.Name, typeLabel(p), required, escapeCell(def), escapeCell(paramDescription(p)))
	}
	return sb.String()
}

func typeLabel(p *tools.Param) string {
	if p.Kind == tools.KindNumber && p.Integer {
		return "integer"
	}
	return string(p.Kind)
}

// paramDescription は説明に列挙値を添える。
func paramDescription(p *tools.Param) string {
	if len(p.Enum) == 0 {
		return p.Description
	}
	vals := make([]string, len(p.Enum))
	for i, v := range p.Enum {
		vals[i] = "`" + v + "`"
		if i < len(p.EnumDescriptions) {
			vals[i] += " " + p.EnumDescriptions[i]
		}
	}
	desc := p.Description
	if desc != "" {
		desc += " "
	}
	return desc + "(" + strings.Join(vals, ", ") + ")"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderMarkdown は glamour の dark スタイルで Markdown をレンダリングする（コンソール用）。
func RenderMarkdown(text string, width int) (string, error) {
	return RenderMarkdownStyle(text, width, styles.DarkStyle)
}

// MarkdownStyle は出力先が端末なら dark、パイプやファイルなら notty を返す。
func MarkdownStyle(w io.Writer) string {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
			return styles.DarkStyle
		}
	}
	return styles.NoTTYStyle
}

// RenderMarkdownStyle は指定スタイルで Markdown をレンダリングする。
func RenderMarkdownStyle(text string, width int, style string) (string, error) {
	// glamour スタイルのマージン分を差し引く（左2+右2=4）
	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

// RenderEnvelope は呼び出し結果をブロックとしてレンダリングする。
// Format:
//
//	✓ OK / ✗ FAILED [kind]
//	⎿  text line 1
//	   text line 2
//	   … +N lines (ctrl+o)
func RenderEnvelope(env *tools.Envelope, width int, expanded bool) string {
	var sb strings.Builder
	if env.IsError {
		header := "✗ FAILED"
		if env.Kind != "" {
			header += " [" + string(env.Kind) + "]"
		}
		sb.WriteString(resultFailedStyle.Render(header))
	} else {
		sb.WriteString(resultOKStyle.Render("✓ OK"))
	}
	sb.WriteString("\n")

	const outputPrefix = "  ⎿  "
	const contPrefix = "     "
	const foldThreshold = 12
	const previewLines = 8

	bodyW := width - runewidth.StringWidth(outputPrefix)
	if bodyW < 20 {
		bodyW = 20
	}
	wrapped := lipgloss.NewStyle().Width(bodyW).Render(prettyText(env.Text()))
	lines := strings.Split(wrapped, "\n")
	total := len(lines)
	folded := false
	if !expanded && total > foldThreshold {
		folded = true
		lines = lines[:previewLines]
	}
	for i, line := range lines {
		prefix := contPrefix
		if i == 0 {
			prefix = outputPrefix
		}
		sb.WriteString(resultBodyStyle.Render(prefix + strings.TrimRight(line, " ")))
		sb.WriteString("\n")
	}
	if folded {
		sb.WriteString(foldIndicatorStyle.Render(fmt.Sprintf("     … +%d lines (ctrl+o)", total-previewLines)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// prettyText は "接頭辞: {JSON}" の JSON 部分を字下げする。JSON でなければそのまま返す。
func prettyText(text string) string {
	prefix, payload, ok := strings.Cut(text, ": ")
	if !ok {
		return text
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(payload), "", "  "); err != nil {
		return text
	}
	return prefix + ":\n" + buf.String()
}

// fitColumn は s を表示幅 w に切り詰め、足りなければ空白で埋める。
func fitColumn(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// formatDuration は表示用の時間フォーマットを返す (例: "120ms", "12s", "1m23s")。
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%ds", m, s)
}
