package tools

import (
	"fmt"
	"slices"
	"strings"
)

// Kind はパラメータの型。
type Kind string

const (
	KindString     Kind = "string"
	KindNumber     Kind = "number"
	KindBoolean    Kind = "boolean"
	KindStringList Kind = "array<string>"
	KindNumberList Kind = "array<number>"
)

func (k Kind) valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindStringList, KindNumberList:
		return true
	}
	return false
}

func (k Kind) isList() bool { return k == KindStringList || k == KindNumberList }

// ToolSpec は YAML から読み込むツール定義。
// Go コードを書かずに catalog/*.yaml を追加するだけで新ツールが使える。
type ToolSpec struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Script      string   `yaml:"script" json:"-"`
	Interpreter string   `yaml:"interpreter,omitempty" json:"-"`
	Params      []Param  `yaml:"params" json:"-"`
	Rules       []Rule   `yaml:"rules,omitempty" json:"-"`
	Messages    Messages `yaml:"messages" json:"-"`
}

// Param は 1 パラメータの契約と、外部スクリプトへの渡し方。
type Param struct {
	Name             string   `yaml:"name"`
	Kind             Kind     `yaml:"kind"`
	Description      string   `yaml:"description"`
	Required         bool     `yaml:"required"`
	Default          any      `yaml:"default"`
	Enum             []string `yaml:"enum"`
	EnumDescriptions []string `yaml:"enum_descriptions"`
	Integer          bool     `yaml:"integer"`

	// Flag は値の前に置くトークン。省略時は "--" + Name。
	// boolean では「値がデフォルトと異なるときだけ出すフラグ」を意味する。
	Flag string `yaml:"flag"`
	// Positional は値だけを先頭に置く（サブコマンド）。
	Positional bool `yaml:"positional"`
	// Subcommands が空でなければ、そのサブコマンドのときだけ渡す。
	Subcommands []string `yaml:"subcommands"`
	// SuppressedBy に指定した boolean が true なら渡さない。
	SuppressedBy string `yaml:"suppressed_by"`
}

// Rule はサブコマンド等の値に応じて追加で必要になるパラメータ。
type Rule struct {
	When       map[string]string `yaml:"when"`
	RequireAll []string          `yaml:"require_all"`
	RequireAny []string          `yaml:"require_any"`
	Message    string            `yaml:"message"`
}

// Messages は応答テキストの接頭辞。
type Messages struct {
	Success             string            `yaml:"success"`
	Failure             string            `yaml:"failure"`
	SuccessBySubcommand map[string]string `yaml:"success_by_subcommand"`
}

// FlagName は実際に渡すフラグトークンを返す。
func (p *Param) FlagName() string {
	if p.Flag != "" {
		return p.Flag
	}
	return "--" + p.Name
}

// Param は名前でパラメータを引く。
func (s *ToolSpec) Param(name string) (*Param, bool) {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i], true
		}
	}
	return nil, false
}

// Subcommand は positional パラメータ（あれば）を返す。
func (s *ToolSpec) Subcommand() (*Param, bool) {
	for i := range s.Params {
		if s.Params[i].Positional {
			return &s.Params[i], true
		}
	}
	return nil, false
}

// SuccessPrefix は成功時の接頭辞。サブコマンド別の指定があればそちらを使う。
func (s *ToolSpec) SuccessPrefix(v Values) string {
	if sub, ok := s.Subcommand(); ok {
		if name, ok := v[sub.Name].(string); ok {
			if msg, ok := s.Messages.SuccessBySubcommand[name]; ok {
				return msg
			}
		}
	}
	if s.Messages.Success != "" {
		return s.Messages.Success
	}
	return s.Name + " result"
}

// FailurePrefix は失敗時の接頭辞。
func (s *ToolSpec) FailurePrefix() string {
	if s.Messages.Failure != "" {
		return s.Messages.Failure
	}
	return s.Name + " failed"
}

// check は登録前に定義の整合性を確認し、Default を正規化する。
func (s *ToolSpec) check() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("tool definition missing 'name' field")
	}
	seen := make(map[string]bool, len(s.Params))
	positional := 0
	for i := range s.Params {
		p := &s.Params[i]
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter %d missing 'name'", s.Name, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate parameter %q", s.Name, p.Name)
		}
		seen[p.Name] = true
		if !p.Kind.valid() {
			return fmt.Errorf("tool %s: parameter %q has unknown kind %q", s.Name, p.Name, p.Kind)
		}
		if p.Positional {
			positional++
			if p.Kind != KindString {
				return fmt.Errorf("tool %s: positional parameter %q must be a string", s.Name, p.Name)
			}
		}
		if len(p.EnumDescriptions) > 0 && len(p.EnumDescriptions) != len(p.Enum) {
			return fmt.Errorf("tool %s: parameter %q has %d enum values but %d descriptions",
				s.Name, p.Name, len(p.Enum), len(p.EnumDescriptions))
		}
		if p.Default != nil {
			def, err := p.normalize(p.Default)
			if err != nil {
				return fmt.Errorf("tool %s: default of %q: %w", s.Name, p.Name, err)
			}
			p.Default = def
		}
	}
	if positional > 1 {
		return fmt.Errorf("tool %s: at most one positional parameter is allowed", s.Name)
	}
	for i := range s.Params {
		p := &s.Params[i]
		if p.SuppressedBy == "" {
			continue
		}
		by, ok := s.Param(p.SuppressedBy)
		if !ok || by.Kind != KindBoolean {
			return fmt.Errorf("tool %s: %q is suppressed by unknown boolean %q", s.Name, p.Name, p.SuppressedBy)
		}
	}
	for _, r := range s.Rules {
		for name := range r.When {
			if _, ok := s.Param(name); !ok {
				return fmt.Errorf("tool %s: rule refers to unknown parameter %q", s.Name, name)
			}
		}
		for _, name := range slices.Concat(r.RequireAll, r.RequireAny) {
			if _, ok := s.Param(name); !ok {
				return fmt.Errorf("tool %s: rule refers to unknown parameter %q", s.Name, name)
			}
		}
	}
	return nil
}

// appliesTo は subcommand の値に対してこのパラメータを渡すかどうか。
func (p *Param) appliesTo(subcommand string) bool {
	return len(p.Subcommands) == 0 || slices.Contains(p.Subcommands, subcommand)
}
