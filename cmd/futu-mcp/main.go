package main

import (
	"errors"
	"fmt"
	"os"
)

// version はリリース時に -ldflags "-X main.version=..." で埋め込む。
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintln(os.Stderr, ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError は終了コードを指定してコマンドを失敗させる。
// err が nil なら何も表示しない（結果は既に出力済み）。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }
