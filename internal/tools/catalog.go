package tools

import "embed"

//go:embed catalog/*.yaml
var builtinCatalog embed.FS

// LoadBuiltin は組み込みの 5 ツールを登録する。
func (r *Registry) LoadBuiltin(bind Binder) (int, error) {
	return r.LoadFS(builtinCatalog, "catalog", bind)
}
