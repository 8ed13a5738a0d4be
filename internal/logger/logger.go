// Package logger wraps a zap.Logger configured from a textual level.
package logger

import (
	"go.uber.org/zap"
)

// Logger holds the process-wide structured logger.
type Logger struct {
	// Log is the underlying zap logger. It is a no-op logger until Init succeeds.
	Log *zap.Logger
}

// New returns a Logger backed by a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init replaces the no-op logger with a production JSON logger at the given
// level ("debug", "info", "warn", "error", case-insensitive).
func (l *Logger) Init(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	l.Log = zl
	return nil
}
