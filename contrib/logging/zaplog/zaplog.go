// Package zaplog adapts a zap logger to types.Logger.
//
// Key/value pairs are passed to the sugared logger's *w methods, so the
// structured fields logged by the connection and model layers become zap
// fields:
//
//	logger, _ := zap.NewProduction()
//	conn, err := cassorm.Connect(ctx, cfg, cassorm.WithLogger(zaplog.New(logger)))
package zaplog

import (
	"go.uber.org/zap"

	"github.com/arloliu/cassorm/types"
)

// Logger implements types.Logger on top of zap.
type Logger struct {
	sugar *zap.SugaredLogger
}

// Compile-time assertion that Logger implements types.Logger.
var _ types.Logger = (*Logger)(nil)

// New wraps logger. A nil logger is replaced by zap.NewNop().
//
// Parameters:
//   - logger: The zap logger to write to
//
// Returns:
//   - *Logger: The adapter
func New(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// Named returns a child logger whose name is extended with name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{sugar: l.sugar.Named(name)}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
