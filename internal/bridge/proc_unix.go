//go:build unix

package bridge

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup は子プロセスを専用のプロセスグループで起動し、
// キャンセル時はグループごと SIGKILL する（孫プロセスを残さない）。
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}
