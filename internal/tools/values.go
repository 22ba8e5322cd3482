package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Values は検証・正規化済みのパラメータ。
// 値の型は string / json.Number / bool / []string / []json.Number のいずれか。
type Values map[string]any

// String は値を文字列として返す（rule の when 照合用）。
func (v Values) String(name string) (string, bool) {
	switch x := v[name].(type) {
	case string:
		return x, true
	case json.Number:
		return x.String(), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// Bool は boolean パラメータの値を返す。未指定なら false。
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// satisfied は rule 上「指定あり」とみなせるか。
// リストは空でないこと、boolean は true であること。
func (v Values) satisfied(name string) bool {
	switch x := v[name].(type) {
	case nil:
		return false
	case bool:
		return x
	case []string:
		return len(x) > 0
	case []json.Number:
		return len(x) > 0
	case string:
		return x != ""
	}
	return true
}

var errAbsent = errors.New("absent")

// normalize は生の値を Kind に合わせて正規化する。
// 数値文字列・"true"/"false"・単一値のリスト化は受け入れる。
func (p *Param) normalize(raw any) (any, error) {
	switch p.Kind {
	case KindString:
		s, err := toString(raw)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return nil, errAbsent
		}
		if err := p.checkToken(s); err != nil {
			return nil, err
		}
		return s, nil
	case KindNumber:
		n, err := toNumber(raw, p.Integer)
		if err != nil {
			return nil, err
		}
		if err := p.checkEnum(n.String()); err != nil {
			return nil, err
		}
		return n, nil
	case KindBoolean:
		return toBool(raw)
	case KindStringList:
		items := toList(raw)
		out := make([]string, 0, len(items))
		for i, item := range items {
			s, err := toString(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if s == "" {
				return nil, fmt.Errorf("element %d must not be empty", i)
			}
			if err := p.checkToken(s); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, nil
	case KindNumberList:
		items := toList(raw)
		out := make([]json.Number, 0, len(items))
		for i, item := range items {
			n, err := toNumber(item, p.Integer)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if err := p.checkEnum(n.String()); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported kind %q", p.Kind)
}

// checkToken は外部スクリプトの引数パーサに誤解釈されうる文字列を拒否する。
func (p *Param) checkToken(s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return errors.New("must not contain NUL")
	}
	if strings.HasPrefix(s, "-") {
		return fmt.Errorf("must not start with '-': %q", s)
	}
	return p.checkEnum(s)
}

func (p *Param) checkEnum(s string) error {
	if len(p.Enum) == 0 || slices.Contains(p.Enum, s) {
		return nil
	}
	return fmt.Errorf("must be one of %s, got %q", strings.Join(p.Enum, ", "), s)
}

func toString(raw any) (string, error) {
	switch x := raw.(type) {
	case string:
		return strings.TrimSpace(x), nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), nil
	}
	return "", fmt.Errorf("must be a string, got %T", raw)
}

func toNumber(raw any, integer bool) (json.Number, error) {
	var s string
	switch x := raw.(type) {
	case json.Number:
		s = x.String()
	case string:
		s = strings.TrimSpace(x)
	case float64:
		s = strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		s = strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		s = fmt.Sprint(x)
	default:
		return "", fmt.Errorf("must be a number, got %T", raw)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", fmt.Errorf("must be a number, got %q", s)
	}
	if integer {
		if f != math.Trunc(f) {
			return "", fmt.Errorf("must be an integer, got %q", s)
		}
		if _, err := strconv.ParseInt(s, 10, 64); err != nil {
			s = strconv.FormatFloat(f, 'f', 0, 64)
		}
	}
	return json.Number(s), nil
}

func toBool(raw any) (bool, error) {
	switch x := raw.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, fmt.Errorf("must be a boolean, got %q", x)
		}
		return b, nil
	}
	return false, fmt.Errorf("must be a boolean, got %T", raw)
}

// toList はスライスを []any に展開する。スカラーは 1 要素のリストとして扱う。
func toList(raw any) []any {
	if items, ok := raw.([]any); ok {
		return items
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice {
		return []any{raw}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
