package bridge

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

var errOutputLimit = errors.New("output limit exceeded")

// Result は 1 回のプロセス実行結果。Stdout は前後の空白を除去済み。
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner は外部コマンドを時間・出力サイズの制限付きで実行する。
// 状態を持たないため、複数 goroutine から同時に Run してよい。
type Runner struct {
	cfg Config
	log *zap.Logger
}

// NewRunner は cfg のゼロ値をデフォルトで補った Runner を返す。
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg.withDefaults(), log: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Config は補完済みの設定を返す。
func (r *Runner) Config() Config { return r.cfg }

// Run は c を実行し、終了まで待つ。
//
//   - 制限時間超過: プロセスグループを強制終了して *TimeoutError
//   - 出力上限超過: 同様に強制終了して *OutputTooLargeError
//   - 非ゼロ終了 / 起動失敗: *ProcessError
//
// ctx のキャンセルはサーバー停止時のみを想定しており、*ProcessError として返る。
func (r *Runner) Run(ctx context.Context, c Command) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, &ProcessError{ExitCode: -1, Err: err}
	}
	path, err := resolveExecutable(c.Path)
	if err != nil {
		return nil, &ProcessError{ExitCode: -1, Err: err}
	}

	timeoutCtx, cancelTimeout := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancelTimeout()
	runCtx, cancel := context.WithCancelCause(timeoutCtx)
	defer cancel(nil)

	budget := newOutputBudget(r.cfg.MaxOutputBytes, func() { cancel(errOutputLimit) })
	stdout := &streamWriter{budget: budget}
	stderr := &streamWriter{budget: budget}

	cmd := exec.CommandContext(runCtx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	isolateProcessGroup(cmd)

	if r.cfg.Debug {
		r.log.Debug("bridge: exec", zap.String("command", c.String()), zap.Duration("timeout", r.cfg.Timeout))
	}

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := &Result{
		Stdout:   strings.TrimSpace(stdout.String()),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Duration: elapsed,
	}

	if r.cfg.Debug {
		r.log.Debug("bridge: exited",
			zap.Int("exit_code", res.ExitCode),
			zap.Duration("elapsed", elapsed),
			zap.Int("stdout_bytes", len(res.Stdout)),
			zap.String("stdout", Excerpt(res.Stdout, 2*ExcerptRunes)),
			zap.String("stderr", stderrExcerpt(res.Stderr)),
		)
	}

	switch {
	case budget.Exceeded():
		return nil, &OutputTooLargeError{Command: c.Path, Limit: r.cfg.MaxOutputBytes}
	case runErr != nil && ctx.Err() != nil:
		return nil, &ProcessError{ExitCode: -1, Err: ctx.Err()}
	case runErr != nil && errors.Is(timeoutCtx.Err(), context.DeadlineExceeded):
		return nil, &TimeoutError{Command: c.Path, Timeout: r.cfg.Timeout}
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &ProcessError{
				ExitCode:      exitErr.ExitCode(),
				StderrExcerpt: stderrExcerpt(res.Stderr),
				Err:           runErr,
			}
		}
		// 起動失敗（実行権限なし等）、または WaitDelay 超過
		return nil, &ProcessError{ExitCode: -1, StderrExcerpt: stderrExcerpt(res.Stderr), Err: runErr}
	}
	return res, nil
}
