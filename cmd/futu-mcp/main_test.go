package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0x6d61/futu-mcp/internal/tools"
)

// run は newRootCmd を args で実行し、stdout と error を返す。
// カレントディレクトリは空の一時ディレクトリに切り替える（futu-mcp.yaml / .env を拾わない）。
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// scriptsDir は name に sh スクリプト body を書いたディレクトリを返す。
func scriptsDir(t *testing.T, scripts map[string]string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exitError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *exitError, got %T: %v", err, err)
	}
	return ee.code
}

const snapshotScript = `echo "connecting to OpenD..."
echo "###JSON_BEGIN###"
echo '{"price":320.5}'
echo "###JSON_END###"
`

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output: %q", out)
	}
}

func TestTools_JSON(t *testing.T) {
	out, err := run(t, "", "tools", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var views []toolView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(views) != 5 || views[0].Name != "get_market_snapshot" || views[4].Name != "subscription_manager" {
		t.Fatalf("tools: %+v", views)
	}
	if views[0].InputSchema["type"] != "object" {
		t.Errorf("schema: %v", views[0].InputSchema)
	}
}

func TestTools_Markdown(t *testing.T) {
	out, err := run(t, "", "tools")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "request_trading_days") {
		t.Errorf("expected tool names in catalog:\n%s", out)
	}
	if strings.Contains(out, "\x1b") {
		t.Errorf("piped catalog should not contain escape sequences:\n%q", out)
	}
}

func TestTools_ExtraToolsDir(t *testing.T) {
	dir := t.TempDir()
	def := "name: ping\ndescription: health check\nscript: ping.py\nmessages:\n  success: ok\n  failure: ng\n"
	if err := os.WriteFile(filepath.Join(dir, "ping.yaml"), []byte(def), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "", "tools", "--json", "--tools-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	var views []toolView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatal(err)
	}
	if len(views) != 6 || views[5].Name != "ping" {
		t.Errorf("expected ping appended: %+v", views)
	}
}

func TestCall_UnknownTool(t *testing.T) {
	_, err := run(t, "", "call", "place_order")
	if got := exitCode(t, err); got != 2 {
		t.Errorf("exit code = %d, want 2", got)
	}
	if !errors.Is(err, tools.ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestCall_ValidationFailure(t *testing.T) {
	out, err := run(t, "", "call", "get_market_snapshot", "--json")
	if got := exitCode(t, err); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}
	var env tools.Envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !env.IsError || !strings.HasPrefix(env.Text(), "获取市场快照数据失败: ") {
		t.Errorf("envelope: %+v", env)
	}
}

func TestCall_Success(t *testing.T) {
	dir := scriptsDir(t, map[string]string{"get_market_snapshot.py": snapshotScript})

	out, err := run(t, "", "call", "get_market_snapshot",
		"--interpreter", "sh", "--scripts-dir", dir,
		"--args", `{"code_list":["HK.00700"]}`, "--json")
	if err != nil {
		t.Fatalf("call: %v\n%s", err, out)
	}
	var env tools.Envelope
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatal(err)
	}
	if env.IsError || env.Text() != `获取到市场快照数据: {"price":320.5}` {
		t.Errorf("envelope text: %q", env.Text())
	}
}

func TestCall_ArgsFromStdin(t *testing.T) {
	dir := scriptsDir(t, map[string]string{
		"request_trading_days.py": `printf '{"argv":"%s"}\n' "$*"` + "\n",
	})

	out, err := run(t, `{"market":"HK"}`, "call", "request_trading_days",
		"--interpreter", "sh", "--scripts-dir", dir, "--args", "-", "--json")
	if err != nil {
		t.Fatalf("call: %v\n%s", err, out)
	}
	if !strings.Contains(out, `--market HK`) {
		t.Errorf("expected argv echoed back:\n%s", out)
	}
}

func TestCall_RenderedOutput(t *testing.T) {
	dir := scriptsDir(t, map[string]string{"get_market_snapshot.py": snapshotScript})

	out, err := run(t, "", "call", "get_market_snapshot",
		"--interpreter", "sh", "--scripts-dir", dir,
		"--args", `{"code_list":"HK.00700"}`)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !strings.Contains(out, "✓ OK") || !strings.Contains(out, `"price": 320.5`) {
		t.Errorf("rendered output:\n%s", out)
	}
}

func TestBatch_OrderAndExitCode(t *testing.T) {
	dir := scriptsDir(t, map[string]string{"get_market_snapshot.py": snapshotScript})
	batch := filepath.Join(t.TempDir(), "batch.yaml")
	body := `- tool: get_market_snapshot
  args:
    code_list: [HK.00700]
- tool: request_trading_days
  args:
    market: XX
- tool: place_order
- tool: get_market_snapshot
  args: {code_list: [US.AAPL, HK.00700]}
`
	if err := os.WriteFile(batch, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "batch", batch, "--json",
		"--interpreter", "sh", "--scripts-dir", dir, "--concurrency", "2")
	if got := exitCode(t, err); got != 1 {
		t.Errorf("exit code = %d, want 1", got)
	}

	var results []batchResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(results) != 4 {
		t.Fatalf("results: %+v", results)
	}
	wantTools := []string{"get_market_snapshot", "request_trading_days", "place_order", "get_market_snapshot"}
	for i, r := range results {
		if r.Tool != wantTools[i] {
			t.Errorf("results[%d].Tool = %s, want %s", i, r.Tool, wantTools[i])
		}
	}
	if results[0].IsError || results[3].IsError {
		t.Errorf("snapshot calls should succeed: %+v", results)
	}
	if !results[1].IsError || results[1].Kind != string(tools.KindValidation) {
		t.Errorf("trading days with bad market: %+v", results[1])
	}
	if !results[2].IsError || !strings.Contains(results[2].Text, "unknown tool") {
		t.Errorf("unknown tool: %+v", results[2])
	}
}

func TestBatch_JSONFile(t *testing.T) {
	dir := scriptsDir(t, map[string]string{"get_market_snapshot.py": snapshotScript})
	batch := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(batch, []byte(`[{"tool":"get_market_snapshot","args":{"code_list":["HK.00700"]}}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "batch", batch, "--interpreter", "sh", "--scripts-dir", dir)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, out)
	}
	if !strings.Contains(out, "[1] get_market_snapshot") {
		t.Errorf("rendered output:\n%s", out)
	}
}

func TestBatch_InvalidFile(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing tool", "- args: {}\n", "has no tool"},
		{"not a list", "tool: x\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := filepath.Join(t.TempDir(), "batch.yaml")
			if err := os.WriteFile(batch, []byte(tt.body), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := run(t, "", "batch", batch)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	_, err := run(t, "", "tools", "--timeout", "-1s")
	if err == nil {
		t.Fatal("expected error for negative timeout")
	}
	var ee *exitError
	if errors.As(err, &ee) {
		t.Errorf("config errors should not carry an exit code: %v", err)
	}
}
