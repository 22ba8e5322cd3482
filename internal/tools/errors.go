package tools

import (
	"errors"
	"fmt"

	"github.com/0x6d61/futu-mcp/internal/bridge"
)

// ErrUnknownTool は未登録のツール名で Invoke したときに返る。
// 呼び出し側の不具合なので、応答エンベロープには変換しない。
var ErrUnknownTool = errors.New("unknown tool")

// UnknownToolError は ErrUnknownTool をツール名付きで包む。
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string { return fmt.Sprintf("unknown tool %q", e.Name) }

func (e *UnknownToolError) Is(target error) bool { return target == ErrUnknownTool }

// ErrValidation は errors.Is で検証失敗を判定するための値。
var ErrValidation = errors.New("validation failed")

// ValidationError はパラメータ検証の失敗。外部プロセス起動前に返る。
type ValidationError struct {
	Parameter string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Parameter, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ScriptError はスクリプトが JSON の "error" フィールドで失敗を報告したことを表す。
type ScriptError struct {
	Detail string
}

func (e *ScriptError) Error() string { return e.Detail }

// FailureKind はエンベロープとログに載せる失敗種別。
type FailureKind string

const (
	KindNone           FailureKind = ""
	KindValidation     FailureKind = "validation"
	KindProcess        FailureKind = "process"
	KindTimeout        FailureKind = "timeout"
	KindOutputTooLarge FailureKind = "output_too_large"
	KindJSONExtraction FailureKind = "json_extraction"
	KindScriptError    FailureKind = "script_error"
)

// KindOf は err を失敗種別に分類する。分類できないものは process 扱い。
func KindOf(err error) FailureKind {
	var (
		validation *ValidationError
		timeout    *bridge.TimeoutError
		tooLarge   *bridge.OutputTooLargeError
		extraction *bridge.JSONExtractionError
		script     *ScriptError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &timeout):
		return KindTimeout
	case errors.As(err, &tooLarge):
		return KindOutputTooLarge
	case errors.As(err, &extraction):
		return KindJSONExtraction
	case errors.As(err, &script):
		return KindScriptError
	}
	return KindProcess
}
