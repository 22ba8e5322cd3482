package bridge

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// ExcerptRunes は JSONExtractionError に載せる生出力の先頭文字数。
	ExcerptRunes = 200

	stderrHeadLines = 20
	stderrTailLines = 20
	stderrMaxBytes  = 4096
)

// Excerpt は text の先頭 n 文字を返す。切り詰めた場合は "..." を付ける。
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos] + "..."
		}
		i++
	}
	return text
}

// stderrExcerpt は stderr を先頭と末尾の行だけ残して圧縮する。
func stderrExcerpt(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	out := headTail(strings.Split(stderr, "\n"), stderrHeadLines, stderrTailLines)
	if len(out) > stderrMaxBytes {
		out = Excerpt(out, stderrMaxBytes/4)
	}
	return out
}

// headTail は先頭 head 行 + 末尾 tail 行を残す。
// 合計行数が head+tail 以下なら全行を返す。
func headTail(lines []string, head, tail int) string {
	total := len(lines)
	if head+tail >= total {
		return strings.Join(lines, "\n")
	}
	var sb strings.Builder
	for _, l := range lines[:head] {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "--- %d lines omitted ---\n", total-head-tail)
	sb.WriteString(strings.Join(lines[total-tail:], "\n"))
	return sb.String()
}
