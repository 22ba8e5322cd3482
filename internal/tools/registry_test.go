package tools_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/0x6d61/futu-mcp/internal/bridge"
	"github.com/0x6d61/futu-mcp/internal/tools"
)

func nopInvoker(tools.Values) (bridge.Command, error) { return bridge.Command{Path: "true"}, nil }

func TestRegistry_LoadBuiltin_Order(t *testing.T) {
	r := builtinRegistry(t)

	var names []string
	for _, spec := range r.List() {
		names = append(names, spec.Name)
	}
	assertStringSliceEqual(t, names, []string{
		"get_market_snapshot",
		"request_history_kline",
		"request_trading_days",
		"calculate_moving_average",
		"subscription_manager",
	})
	for _, spec := range r.List() {
		if spec.Description == "" {
			t.Errorf("%s: empty description", spec.Name)
		}
		if spec.Messages.Success == "" || spec.Messages.Failure == "" {
			t.Errorf("%s: missing messages", spec.Name)
		}
	}
}

func TestRegistry_LoadDir_OverrideAndAppend(t *testing.T) {
	dir := t.TempDir()

	// 既存ツールの上書き
	override := `
name: get_market_snapshot
description: "上書き版"
script: snapshot_v2.py
interpreter: python3
messages:
  success: ok
  failure: ng
params:
  - name: code_list
    kind: array<string>
    required: true
`
	// 新規ツールの追加
	extra := `
name: echo_tool
description: "テスト用ツール"
script: echo.sh
params:
  - name: text
    kind: string
`
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(override), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(extra), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}

	r := builtinRegistry(t)
	n, err := r.LoadDir(dir, tools.ScriptBinder("python", testScriptsDir))
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded: got %d, want 2", n)
	}
	if r.Len() != 6 {
		t.Fatalf("Len: got %d, want 6", r.Len())
	}

	list := r.List()
	if list[0].Name != "get_market_snapshot" || list[0].Description != "上書き版" {
		t.Errorf("override should keep position: got %q %q", list[0].Name, list[0].Description)
	}
	if list[5].Name != "echo_tool" {
		t.Errorf("new tool should be appended: got %q", list[5].Name)
	}

	spec, invoke, _ := r.Lookup("get_market_snapshot")
	vals, _, err := spec.Validate(map[string]any{"code_list": []any{"HK.00700"}})
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := invoke(vals)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Path != "python3" {
		t.Errorf("interpreter override: got %q", cmd.Path)
	}
	if cmd.Args[0] != filepath.Join(testScriptsDir, "snapshot_v2.py") {
		t.Errorf("script: got %q", cmd.Args[0])
	}
}

func TestRegistry_LoadDir_NonExistentDir(t *testing.T) {
	r := tools.NewRegistry()
	// 存在しないディレクトリはエラーにならない（起動時の柔軟性）
	n, err := r.LoadDir("/nonexistent/path/to/tools", tools.ScriptBinder("python", "."))
	if err != nil {
		t.Errorf("LoadDir on missing dir should not error, got: %v", err)
	}
	if n != 0 {
		t.Errorf("loaded: got %d", n)
	}
}

func TestRegistry_LoadDir_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"missing name", "description: x\n", "missing 'name'"},
		{"unknown field", "name: t\nbinary: nmap\n", "parse yaml"},
		{"unknown kind", "name: t\nparams:\n  - name: p\n    kind: map\n", "unknown kind"},
		{"duplicate param", "name: t\nparams:\n  - {name: p, kind: string}\n  - {name: p, kind: string}\n", "duplicate"},
		{"two positionals", "name: t\nparams:\n  - {name: a, kind: string, positional: true}\n  - {name: b, kind: string, positional: true}\n", "positional"},
		{"bad default", "name: t\nparams:\n  - {name: n, kind: number, default: abc}\n", "default"},
		{"rule on unknown param", "name: t\nparams:\n  - {name: a, kind: string}\nrules:\n  - when: {a: x}\n    require_all: [b]\n", "unknown parameter"},
		{"suppressed by non-boolean", "name: t\nparams:\n  - {name: a, kind: string}\n  - {name: b, kind: string, suppressed_by: a}\n", "suppressed"},
		{"enum descriptions mismatch", "name: t\nparams:\n  - {name: a, kind: string, enum: [x, y], enum_descriptions: [only]}\n", "descriptions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "t.yaml"), []byte(tt.yaml), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := tools.NewRegistry().LoadDir(dir, tools.ScriptBinder("python", "."))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	r := tools.NewRegistry()
	spec := &tools.ToolSpec{
		Name:   "ping",
		Params: []tools.Param{{Name: "host", Kind: tools.KindString, Required: true}},
	}
	if err := r.Register(spec, nopInvoker); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&tools.ToolSpec{Name: "nil"}, nil); err == nil {
		t.Error("nil invoker should be rejected")
	}
	got, invoke, ok := r.Lookup("ping")
	if !ok || got != spec || invoke == nil {
		t.Fatalf("Lookup: got %v %v", got, ok)
	}
	if _, _, ok := r.Lookup("missing"); ok {
		t.Error("missing tool should not be found")
	}
}

func TestScriptBinder_NoScript(t *testing.T) {
	spec := &tools.ToolSpec{Name: "noscript"}
	invoke := tools.ScriptBinder("python", ".")(spec)
	if _, err := invoke(tools.Values{}); err == nil {
		t.Error("expected error for tool without script")
	}
}
