// Package logging は zap ロガーの生成をまとめる。
// stdout は MCP の stdio トランスポートが使うため、ログは常に stderr に出す。
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は debug に応じたロガーを返す。
// debug=true なら開発用エンコーダで Debug レベルまで、false なら JSON で Info 以上。
func New(debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// Must は New のエラー時に Nop ロガーへ落とす。
func Must(debug bool) *zap.Logger {
	l, err := New(debug)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
