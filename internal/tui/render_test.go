package tui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// ---------------------------------------------------------------------------
// CatalogMarkdown / ToolMarkdown
// ---------------------------------------------------------------------------

func TestCatalogMarkdown_ListsAllTools(t *testing.T) {
	md := CatalogMarkdown(builtinSpecs(t))

	for _, name := range []string{
		"get_market_snapshot", "request_history_kline", "request_trading_days",
		"calculate_moving_average", "subscription_manager",
	} {
		if !strings.Contains(md, "## "+name) {
			t.Errorf("expected heading for %s", name)
		}
	}
	if strings.Index(md, "## get_market_snapshot") > strings.Index(md, "## subscription_manager") {
		t.Error("expected registration order")
	}
}

func TestCatalogMarkdown_Empty(t *testing.T) {
	if md := CatalogMarkdown(nil); !strings.Contains(md, "no tools registered") {
		t.Errorf("got %q", md)
	}
}

func TestToolMarkdown_ParamTable(t *testing.T) {
	var kline *tools.ToolSpec
	for _, s := range builtinSpecs(t) {
		if s.Name == "request_history_kline" {
			kline = s
		}
	}
	if kline == nil {
		t.Fatal("request_history_kline not found")
	}
	md := ToolMarkdown(kline)

	if !strings.Contains(md, "| `code` | string | yes |") {
		t.Errorf("expected required code row:\n%s", md)
	}
	if !strings.Contains(md, "| `autype` | integer |") {
		t.Errorf("expected integer type for autype:\n%s", md)
	}
	if !strings.Contains(md, "`K_DAY`") {
		t.Errorf("expected enum values for ktype:\n%s", md)
	}
}

func TestToolMarkdown_NoParams(t *testing.T) {
	md := ToolMarkdown(&tools.ToolSpec{Name: "ping", Description: "health"})
	if !strings.Contains(md, "no parameters") {
		t.Errorf("got %q", md)
	}
}

func TestEscapeCell(t *testing.T) {
	if got := escapeCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("got %q", got)
	}
}

// ---------------------------------------------------------------------------
// RenderMarkdown
// ---------------------------------------------------------------------------

func TestRenderMarkdown_Table(t *testing.T) {
	out, err := RenderMarkdown(ToolMarkdown(builtinSpecs(t)[0]), 100)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	plain := stripANSI(out)
	if !strings.Contains(plain, "get_market_snapshot") || !strings.Contains(plain, "code_list") {
		t.Errorf("unexpected rendering:\n%s", plain)
	}
}

func TestMarkdownStyle(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	tests := []struct {
		name string
		out  io.Writer
		want string
	}{
		{"buffer", &bytes.Buffer{}, "notty"},
		{"pipe", w, "notty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarkdownStyle(tt.out); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderMarkdownStyle_NoTTYIsPlain(t *testing.T) {
	out, err := RenderMarkdownStyle(CatalogMarkdown(builtinSpecs(t)), 100, MarkdownStyle(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("RenderMarkdownStyle: %v", err)
	}
	if strings.Contains(out, "\x1b") {
		t.Errorf("notty rendering should not contain escape sequences:\n%q", out)
	}
	if !strings.Contains(out, "request_trading_days") {
		t.Errorf("expected tool names in catalog:\n%s", out)
	}
}

func TestRenderMarkdown_NarrowWidthClamped(t *testing.T) {
	if _, err := RenderMarkdown("# title\n\nbody", 5); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
}

// ---------------------------------------------------------------------------
// RenderEnvelope
// ---------------------------------------------------------------------------

func TestRenderEnvelope_Success(t *testing.T) {
	env := tools.TextEnvelope(`获取到市场快照数据: {"price":320.5}`, false)
	out := stripANSI(RenderEnvelope(env, 80, false))

	if !strings.Contains(out, "✓ OK") {
		t.Error("expected OK header")
	}
	if !strings.Contains(out, "⎿") || !strings.Contains(out, `"price": 320.5`) {
		t.Errorf("expected indented JSON body:\n%s", out)
	}
}

func TestRenderEnvelope_FailureShowsKind(t *testing.T) {
	env := tools.TextEnvelope("获取市场快照数据失败: invalid parameter code_list: is required", true)
	env.Kind = tools.KindValidation
	out := stripANSI(RenderEnvelope(env, 80, false))

	if !strings.Contains(out, "✗ FAILED [validation]") {
		t.Errorf("expected failure header:\n%s", out)
	}
	if !strings.Contains(out, "is required") {
		t.Error("expected failure text")
	}
}

func TestRenderEnvelope_FoldsLongResults(t *testing.T) {
	members := make([]string, 30)
	for i := range members {
		members[i] = fmt.Sprintf(`"k%d":%d`, i, i)
	}
	env := tools.TextEnvelope("ok: {"+strings.Join(members, ",")+"}", false)

	folded := stripANSI(RenderEnvelope(env, 80, false))
	if !strings.Contains(folded, "lines (ctrl+o)") {
		t.Errorf("expected fold indicator:\n%s", folded)
	}
	expanded := stripANSI(RenderEnvelope(env, 80, true))
	if strings.Contains(expanded, "lines (ctrl+o)") {
		t.Error("expanded output should not fold")
	}
	if !strings.Contains(expanded, `"k29": 29`) {
		t.Error("expanded output should show the last member")
	}
}

func TestPrettyText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json payload", `ok: {"a":1}`, "ok:\n{\n  \"a\": 1\n}"},
		{"plain failure", "failed: process exited with code 1", "failed: process exited with code 1"},
		{"no separator", "plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prettyText(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// fitColumn / formatDuration
// ---------------------------------------------------------------------------

func TestFitColumn(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"订阅管理", 5, "订阅…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		got := fitColumn(tt.in, tt.w)
		if got != tt.want {
			t.Errorf("fitColumn(%q, %d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
		if tt.w > 0 && runewidth.StringWidth(got) != tt.w {
			t.Errorf("fitColumn(%q, %d) width = %d", tt.in, tt.w, runewidth.StringWidth(got))
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{120 * time.Millisecond, "120ms"},
		{12 * time.Second, "12s"},
		{83 * time.Second, "1m23s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
