package tools

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/0x6d61/futu-mcp/internal/bridge"
)

// Invoker は検証済みパラメータから外部コマンドを組み立てる。
type Invoker func(vals Values) (bridge.Command, error)

// Binder は ToolSpec ごとの Invoker を決める（YAML ロード時に使う）。
type Binder func(spec *ToolSpec) Invoker

type entry struct {
	spec   *ToolSpec
	invoke Invoker
}

// Registry はロード済みツール定義を登録順に保持する。
// 起動時にだけ書き込み、以降は読み取り専用として並行に使う。
type Registry struct {
	order   []string
	entries map[string]*entry
}

// NewRegistry は空の Registry を返す。
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register は spec と invoker を登録する。同名があれば位置を保ったまま置き換える。
func (r *Registry) Register(spec *ToolSpec, invoke Invoker) error {
	if err := spec.check(); err != nil {
		return err
	}
	if invoke == nil {
		return fmt.Errorf("tool %s: nil invoker", spec.Name)
	}
	if _, exists := r.entries[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.entries[spec.Name] = &entry{spec: spec, invoke: invoke}
	return nil
}

// LoadFS は fsys の dir 直下の *.yaml をファイル名順にロードする。
// ファイル名の数字プレフィックスで公開順を制御する。
func (r *Registry) LoadFS(fsys fs.FS, dir string, bind Binder) (int, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return 0, err
	}
	sort.Strings(matches)
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", name, err)
		}
		if err := r.loadSpec(data, bind); err != nil {
			return 0, fmt.Errorf("load %s: %w", name, err)
		}
	}
	return len(matches), nil
}

// LoadDir は dir 直下の *.yaml をロードする。組み込み定義の上書き・追加用。
// ディレクトリが存在しない場合は何もしない（起動時の柔軟性）。
func (r *Registry) LoadDir(dir string, bind Binder) (int, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("tools dir: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("tools dir %s is not a directory", dir)
	}
	return r.LoadFS(os.DirFS(dir), ".", bind)
}

func (r *Registry) loadSpec(data []byte, bind Binder) error {
	var spec ToolSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return r.Register(&spec, bind(&spec))
}

// List は登録順の ToolSpec を返す。
func (r *Registry) List() []*ToolSpec {
	out := make([]*ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].spec)
	}
	return out
}

// Lookup は名前に対応する ToolSpec と Invoker を返す。
func (r *Registry) Lookup(name string) (*ToolSpec, Invoker, bool) {
	e, ok := r.entries[name]
	if !ok {
		return nil, nil, false
	}
	return e.spec, e.invoke, true
}

// Len は登録済みツール数。
func (r *Registry) Len() int { return len(r.order) }
