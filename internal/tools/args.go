package tools

import (
	"encoding/json"
	"fmt"
)

// BuildArgs は検証済みの Values を外部スクリプトの引数トークン列に変換する。
//
// 変換ルール:
//   - positional: 値だけを先頭に置く
//   - boolean: 値がデフォルトと異なるときだけ Flag を置く
//     （デフォルト true なら否定フラグ、デフォルト false なら肯定フラグになる）
//   - リスト: Flag の後に要素ごとに 1 トークン。空リストは何も出さない
//   - スカラー: Flag と値の 2 トークン
//   - Subcommands 外・SuppressedBy が true のパラメータは出さない
func (s *ToolSpec) BuildArgs(vals Values) ([]string, error) {
	var args []string
	subcommand := ""
	if sub, ok := s.Subcommand(); ok {
		name, ok := vals[sub.Name].(string)
		if !ok {
			return nil, fmt.Errorf("tool %s: subcommand %q not set", s.Name, sub.Name)
		}
		subcommand = name
		args = append(args, name)
	}

	for i := range s.Params {
		p := &s.Params[i]
		if p.Positional || !p.appliesTo(subcommand) {
			continue
		}
		if s.suppressed(p, subcommand, vals) {
			continue
		}
		switch v := vals[p.Name].(type) {
		case nil:
		case bool:
			def, _ := p.Default.(bool)
			if v != def {
				args = append(args, p.FlagName())
			}
		case string:
			args = append(args, p.FlagName(), v)
		case json.Number:
			args = append(args, p.FlagName(), v.String())
		case []string:
			if len(v) > 0 {
				args = append(args, p.FlagName())
				args = append(args, v...)
			}
		case []json.Number:
			if len(v) > 0 {
				args = append(args, p.FlagName())
				for _, n := range v {
					args = append(args, n.String())
				}
			}
		default:
			return nil, fmt.Errorf("tool %s: parameter %q has unexpected value %T", s.Name, p.Name, v)
		}
	}
	return args, nil
}

// suppressed は p が抑制されているか。抑制側のパラメータが現在の
// サブコマンドに適用されない場合、その値は無視する。
func (s *ToolSpec) suppressed(p *Param, subcommand string, vals Values) bool {
	if p.SuppressedBy == "" {
		return false
	}
	by, ok := s.Param(p.SuppressedBy)
	if !ok || !by.appliesTo(subcommand) {
		return false
	}
	return vals.Bool(p.SuppressedBy)
}
