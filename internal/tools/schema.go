package tools

import (
	"encoding/json"
	"strconv"
)

// InputSchema はクライアントに公開する JSON-Schema 形式の引数定義を返す。
func (s *ToolSpec) InputSchema() map[string]any {
	props := make(map[string]any, len(s.Params))
	required := []string{}
	for i := range s.Params {
		p := &s.Params[i]
		props[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func (p *Param) schema() map[string]any {
	out := map[string]any{}
	if p.Description != "" {
		out["description"] = p.Description
	}
	elem := map[string]any{}
	switch p.Kind {
	case KindString:
		elem = out
		elem["type"] = "string"
	case KindBoolean:
		out["type"] = "boolean"
	case KindNumber:
		elem = out
		elem["type"] = p.numberType()
	case KindStringList:
		elem["type"] = "string"
		out["type"] = "array"
		out["items"] = elem
	case KindNumberList:
		elem["type"] = p.numberType()
		out["type"] = "array"
		out["items"] = elem
	}
	if len(p.Enum) > 0 {
		elem["enum"] = p.enumValues()
		if len(p.EnumDescriptions) > 0 {
			elem["enumDescriptions"] = p.EnumDescriptions
		}
	}
	if p.Default != nil {
		out["default"] = schemaValue(p.Default)
	}
	return out
}

func (p *Param) numberType() string {
	if p.Integer {
		return "integer"
	}
	return "number"
}

// enumValues は数値型の enum を JSON の数値として返す。
func (p *Param) enumValues() []any {
	out := make([]any, len(p.Enum))
	for i, e := range p.Enum {
		out[i] = e
		if p.Kind == KindNumber || p.Kind == KindNumberList {
			if _, err := strconv.ParseFloat(e, 64); err == nil {
				out[i] = json.Number(e)
			}
		}
	}
	return out
}

func schemaValue(v any) any {
	if ns, ok := v.([]json.Number); ok {
		out := make([]any, len(ns))
		for i, n := range ns {
			out[i] = n
		}
		return out
	}
	return v
}
