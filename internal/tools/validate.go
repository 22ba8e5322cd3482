package tools

import (
	"errors"
	"sort"
	"strings"
)

// Validate は raw を定義に照らして検証し、正規化済みの Values を返す。
// 未知のパラメータは無視する（ignored で名前を返す）。
func (s *ToolSpec) Validate(raw map[string]any) (vals Values, ignored []string, err error) {
	vals = make(Values, len(raw))
	for i := range s.Params {
		p := &s.Params[i]
		v, present := raw[p.Name]
		if present && v != nil {
			norm, nerr := p.normalize(v)
			switch {
			case errors.Is(nerr, errAbsent):
			case nerr != nil:
				return nil, nil, &ValidationError{Parameter: p.Name, Reason: nerr.Error()}
			default:
				vals[p.Name] = norm
			}
		}
		if p.Required && !vals.satisfied(p.Name) {
			reason := "is required"
			if _, ok := vals[p.Name]; ok {
				reason = "must not be empty"
			}
			return nil, nil, &ValidationError{Parameter: p.Name, Reason: reason}
		}
	}

	for _, r := range s.Rules {
		if !r.matches(vals) {
			continue
		}
		for _, name := range r.RequireAll {
			if !vals.satisfied(name) {
				return nil, nil, &ValidationError{Parameter: name, Reason: r.reason("is required")}
			}
		}
		if len(r.RequireAny) > 0 && !anySatisfied(vals, r.RequireAny) {
			return nil, nil, &ValidationError{
				Parameter: strings.Join(r.RequireAny, "|"),
				Reason:    r.reason("at least one is required"),
			}
		}
	}

	for name := range raw {
		if _, ok := s.Param(name); !ok {
			ignored = append(ignored, name)
		}
	}
	sort.Strings(ignored)
	return vals, ignored, nil
}

func (r *Rule) matches(vals Values) bool {
	for name, want := range r.When {
		got, ok := vals.String(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func (r *Rule) reason(fallback string) string {
	if r.Message != "" {
		return r.Message
	}
	return fallback
}

func anySatisfied(vals Values, names []string) bool {
	for _, n := range names {
		if vals.satisfied(n) {
			return true
		}
	}
	return false
}
