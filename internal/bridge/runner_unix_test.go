//go:build unix

package bridge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/0x6d61/futu-mcp/internal/bridge"
)

// タイムアウト後、子プロセスが残っていないこと
func TestRunner_TimeoutKillsProcess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	script := writeScript(t, `echo $$ > "`+pidFile+`"; exec sleep 30`)
	r := bridge.NewRunner(bridge.Config{Timeout: 500 * time.Millisecond})

	_, err := r.Run(context.Background(), shCommand(script))
	var timeoutErr *bridge.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %v", err)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parse pid %q: %v", data, err)
	}
	if err := syscall.Kill(pid, 0); !errors.Is(err, syscall.ESRCH) {
		t.Errorf("process %d still exists after timeout (kill 0: %v)", pid, err)
	}
}
