//go:build !unix

package bridge

import "os/exec"

// プロセスグループを持たない環境では exec.CommandContext 既定の Kill に任せる。
func isolateProcessGroup(cmd *exec.Cmd) {}
