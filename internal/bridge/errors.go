package bridge

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCommand は Command 自体が実行不能なときに返る。
var ErrInvalidCommand = errors.New("bridge: invalid command")

// TimeoutError は外部プロセスが制限時間内に終了しなかったことを表す。
// このエラーが返る時点でプロセスグループは強制終了済み。
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("process %s timed out after %s", e.Command, e.Timeout)
}

// OutputTooLargeError は stdout+stderr の合計が上限を超えたことを表す。
type OutputTooLargeError struct {
	Command string
	Limit   int64
}

func (e *OutputTooLargeError) Error() string {
	return fmt.Sprintf("process %s produced more than %d bytes of output", e.Command, e.Limit)
}

// ProcessError は非ゼロ終了、または起動失敗（ExitCode == -1）を表す。
type ProcessError struct {
	ExitCode      int
	StderrExcerpt string
	Err           error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("process exited with code %d", e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("process failed to start: %v", e.Err)
	}
	if e.StderrExcerpt != "" {
		msg += ": " + e.StderrExcerpt
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// JSONExtractionError はどの抽出戦略でも JSON を取り出せなかったことを表す。
type JSONExtractionError struct {
	Excerpt string
}

func (e *JSONExtractionError) Error() string {
	return fmt.Sprintf("no JSON payload found in output: %q", e.Excerpt)
}
