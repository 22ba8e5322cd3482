package tools

// Phase は 1 回の呼び出しの進行段階。遷移は一方向のみ。
//
//	Received → Validated → CommandBuilt → Executing → Succeeded | Failed
type Phase int

const (
	PhaseReceived Phase = iota
	PhaseValidated
	PhaseCommandBuilt
	PhaseExecuting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseReceived:
		return "received"
	case PhaseValidated:
		return "validated"
	case PhaseCommandBuilt:
		return "command_built"
	case PhaseExecuting:
		return "executing"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal は終端状態かどうか。
func (p Phase) Terminal() bool { return p == PhaseSucceeded || p == PhaseFailed }

// PhaseObserver は段階遷移のたびに呼ばれる。呼び出しごとの goroutine から呼ばれる。
type PhaseObserver func(invocationID, tool string, phase Phase)
