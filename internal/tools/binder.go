package tools

import (
	"fmt"
	"path/filepath"

	"github.com/0x6d61/futu-mcp/internal/bridge"
)

// ScriptBinder は `<interpreter> <scriptsDir>/<script> <args...>` を組み立てる Binder を返す。
// spec.Interpreter があれば interpreter より優先する。
func ScriptBinder(interpreter, scriptsDir string) Binder {
	return func(spec *ToolSpec) Invoker {
		return func(vals Values) (bridge.Command, error) {
			if spec.Script == "" {
				return bridge.Command{}, fmt.Errorf("tool %s: no script configured", spec.Name)
			}
			args, err := spec.BuildArgs(vals)
			if err != nil {
				return bridge.Command{}, err
			}
			script := spec.Script
			if !filepath.IsAbs(script) {
				script = filepath.Join(scriptsDir, script)
			}
			exe := interpreter
			if spec.Interpreter != "" {
				exe = spec.Interpreter
			}
			return bridge.Command{
				Path: exe,
				Args: append([]string{script}, args...),
			}, nil
		}
	}
}
