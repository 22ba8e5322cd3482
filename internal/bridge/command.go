package bridge

import (
	"fmt"
	"strings"
)

// Command は 1 回の外部プロセス起動を表す。
// Args の各要素はそのまま argv の 1 要素になる（シェルは経由しない）。
type Command struct {
	Path string
	Args []string
	Dir  string
}

// String はログ用の表示形式を返す。空白を含むトークンだけ引用する。
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Path)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\n\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func (c Command) validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("%w: empty executable path", ErrInvalidCommand)
	}
	for i, a := range c.Args {
		if strings.IndexByte(a, 0) >= 0 {
			return fmt.Errorf("%w: argument %d contains NUL", ErrInvalidCommand, i)
		}
	}
	return nil
}
