package bridge

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxOutputBytes = 10 << 20

	// waitDelay はプロセス終了後、継承されたパイプが閉じるのを待つ上限。
	waitDelay = 2 * time.Second
)

// Config は Runner の実行制限。
type Config struct {
	Timeout        time.Duration
	MaxOutputBytes int64
	// Debug が true のとき、コマンド・生出力・抽出戦略を Debug ログに出す。
	Debug bool
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return c
}

// Option は Runner の追加設定。
type Option func(*Runner)

// WithLogger は診断ログの出力先を設定する。
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}
