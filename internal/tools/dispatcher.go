package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/0x6d61/futu-mcp/internal/bridge"
)

// Runner は外部コマンドを実行する。本番では *bridge.Runner、テストではフェイクを使う。
type Runner interface {
	Run(ctx context.Context, c bridge.Command) (*bridge.Result, error)
}

// Dispatcher はツール名から検証・引数組み立て・実行・応答変換までを行う。
// 呼び出し間で可変状態を共有しないので、Invoke は並行に呼んでよい。
type Dispatcher struct {
	registry *Registry
	runner   Runner
	log      *zap.Logger
	store    *LogStore
	observer PhaseObserver
}

// DispatcherOption は Dispatcher の追加設定。
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger はログ出力先を設定する。
func WithDispatchLogger(l *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithLogStore は呼び出し記録の保存先を設定する。
func WithLogStore(s *LogStore) DispatcherOption {
	return func(d *Dispatcher) { d.store = s }
}

// WithPhaseObserver は段階遷移の通知先を設定する。
func WithPhaseObserver(o PhaseObserver) DispatcherOption {
	return func(d *Dispatcher) { d.observer = o }
}

// NewDispatcher は Dispatcher を返す。
func NewDispatcher(reg *Registry, runner Runner, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{registry: reg, runner: runner, log: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Registry は登録済みツールを返す。
func (d *Dispatcher) Registry() *Registry { return d.registry }

// LogStore は呼び出し記録（未設定なら nil）を返す。
func (d *Dispatcher) LogStore() *LogStore { return d.store }

// invocation は 1 回の呼び出しの作業状態。呼び出し元 goroutine だけが触る。
type invocation struct {
	d     *Dispatcher
	spec  *ToolSpec
	rec   Record
	phase Phase
	log   *zap.Logger
}

func (inv *invocation) enter(p Phase) {
	if inv.phase.Terminal() {
		return
	}
	inv.phase = p
	inv.rec.Phase = p.String()
	if inv.d.observer != nil {
		inv.d.observer(inv.rec.ID, inv.spec.Name, p)
	}
}

// Invoke は name のツールを raw パラメータで呼び出す。
//
// 検証・実行・JSON 抽出の失敗はすべて IsError の Envelope として返し、error は nil。
// error を返すのは未登録のツール名（*UnknownToolError）のときだけ。
func (d *Dispatcher) Invoke(ctx context.Context, name string, raw map[string]any) (*Envelope, error) {
	return d.invoke(ctx, name, raw, nil)
}

// InvokeJSON は JSON オブジェクトで渡された引数で Invoke する。
// オブジェクトとして読めない引数は検証失敗の Envelope になる。
func (d *Dispatcher) InvokeJSON(ctx context.Context, name string, args json.RawMessage) (*Envelope, error) {
	raw, err := DecodeArgs(args)
	return d.invoke(ctx, name, raw, err)
}

// DecodeArgs は JSON オブジェクトを map に読む。数値は json.Number のまま保持する。
// 空入力と null は空の map とみなす。
func DecodeArgs(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("must be a JSON object: %w", err)
	}
	if dec.More() {
		return nil, errors.New("must be a single JSON object")
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func (d *Dispatcher) invoke(ctx context.Context, name string, raw map[string]any, decodeErr error) (*Envelope, error) {
	spec, invoke, ok := d.registry.Lookup(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}

	inv := &invocation{
		d:    d,
		spec: spec,
		rec:  Record{ID: NewID(), Tool: name, StartedAt: time.Now(), ExitCode: -1},
	}
	inv.log = d.log.With(zap.String("invocation_id", inv.rec.ID), zap.String("tool", name))
	inv.enter(PhaseReceived)

	if decodeErr != nil {
		return inv.fail(&ValidationError{Parameter: "arguments", Reason: decodeErr.Error()}), nil
	}
	vals, ignored, err := spec.Validate(raw)
	if err != nil {
		return inv.fail(err), nil
	}
	if len(ignored) > 0 {
		inv.log.Debug("ignoring unknown parameters", zap.Strings("params", ignored))
	}
	inv.enter(PhaseValidated)

	cmd, err := invoke(vals)
	if err != nil {
		return inv.fail(err), nil
	}
	inv.rec.Command = cmd.String()
	inv.enter(PhaseCommandBuilt)

	inv.enter(PhaseExecuting)
	res, err := d.runner.Run(ctx, cmd)
	if err != nil {
		var procErr *bridge.ProcessError
		if errors.As(err, &procErr) {
			inv.rec.ExitCode = procErr.ExitCode
			inv.rec.StderrExcerpt = procErr.StderrExcerpt
		}
		return inv.fail(err), nil
	}
	inv.rec.ExitCode = res.ExitCode
	inv.rec.StdoutExcerpt = bridge.Excerpt(res.Stdout, bridge.ExcerptRunes)

	payload, strategy, err := bridge.ExtractJSON(res.Stdout)
	if err != nil {
		return inv.fail(err), nil
	}
	inv.rec.Strategy = string(strategy)
	inv.log.Debug("extracted JSON", zap.String("strategy", string(strategy)), zap.Int("bytes", len(payload)))

	if detail, ok := scriptError(payload); ok {
		return inv.fail(&ScriptError{Detail: detail}), nil
	}

	inv.enter(PhaseSucceeded)
	d.save(inv)
	env := TextEnvelope(spec.SuccessPrefix(vals)+": "+string(payload), false)
	env.InvocationID = inv.rec.ID
	return env, nil
}

func (inv *invocation) fail(err error) *Envelope {
	kind := KindOf(err)
	inv.rec.Kind = kind
	inv.rec.Error = err.Error()
	inv.log.Warn("invocation failed",
		zap.String("kind", string(kind)),
		zap.Stringer("phase", inv.phase),
		zap.Error(err),
	)
	inv.enter(PhaseFailed)
	inv.d.save(inv)

	env := TextEnvelope(inv.spec.FailurePrefix()+": "+err.Error(), true)
	env.Kind = kind
	env.InvocationID = inv.rec.ID
	return env
}

func (d *Dispatcher) save(inv *invocation) {
	inv.rec.Duration = time.Since(inv.rec.StartedAt).String()
	if d.store != nil {
		d.store.Save(inv.rec)
	}
}

// scriptError はスクリプトが {"error": ...} で失敗を報告していればその内容を返す。
// null・false・0・"" は報告なしとみなす。
func scriptError(payload json.RawMessage) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", false
	}
	e, ok := obj["error"]
	if !ok || falsy(e) {
		return "", false
	}
	var msg string
	if err := json.Unmarshal(e, &msg); err == nil {
		return msg, true
	}
	return string(e), true
}

func falsy(v json.RawMessage) bool {
	switch s := string(v); s {
	case "null", "false", `""`:
		return true
	default:
		var n float64
		return json.Unmarshal(v, &n) == nil && n == 0
	}
}
