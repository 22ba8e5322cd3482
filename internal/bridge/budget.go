package bridge

import (
	"bytes"
	"sync"
)

// outputBudget は stdout と stderr で共有するバイト数の上限。
// 超過した瞬間に onExceed を 1 回だけ呼び、それ以降の書き込みは捨てる。
type outputBudget struct {
	mu       sync.Mutex
	limit    int64
	used     int64
	exceeded bool
	onExceed func()
}

func newOutputBudget(limit int64, onExceed func()) *outputBudget {
	return &outputBudget{limit: limit, onExceed: onExceed}
}

// charge は n バイト分を消費し、書き込んでよいバイト数を返す。
func (b *outputBudget) charge(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.exceeded {
		return 0
	}
	remaining := b.limit - b.used
	if int64(n) <= remaining {
		b.used += int64(n)
		return n
	}
	b.used = b.limit
	b.exceeded = true
	if b.onExceed != nil {
		b.onExceed()
	}
	return int(remaining)
}

func (b *outputBudget) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

// streamWriter は 1 ストリーム分のバッファ。
// パイプを詰まらせないよう、上限超過後も書き込み自体は成功扱いにする。
type streamWriter struct {
	budget *outputBudget
	buf    bytes.Buffer
}

func (w *streamWriter) Write(p []byte) (int, error) {
	n := w.budget.charge(len(p))
	if n > 0 {
		w.buf.Write(p[:n])
	}
	return len(p), nil
}

func (w *streamWriter) String() string { return w.buf.String() }
