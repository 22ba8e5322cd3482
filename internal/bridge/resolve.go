package bridge

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// resolveExecutable は実行ファイルを絶対パスに解決する。
//
//   - パス区切りを含む名前はそのファイルが実在し、ディレクトリでないことを確認する
//   - それ以外は exec.LookPath で PATH から探す
func resolveExecutable(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("executable name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		abs, err := filepath.Abs(name)
		if err != nil {
			return "", fmt.Errorf("resolve %q: %w", name, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("executable %q: %w", name, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("executable %q is a directory", name)
		}
		return abs, nil
	}
	absPath, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("executable %q not found in PATH: %w", name, err)
	}
	if !filepath.IsAbs(absPath) {
		return "", fmt.Errorf("resolved path is not absolute: %q", absPath)
	}
	return absPath, nil
}
