package testutil

import (
	"sync"

	"github.com/arloliu/cassorm/types"
)

// LogEntry is one message captured by TestLogger.
type LogEntry struct {
	Level         string
	Msg           string
	KeysAndValues []any
}

// TestLogger is a types.Logger that records every message.
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Compile-time assertion that TestLogger implements types.Logger.
var _ types.Logger = (*TestLogger)(nil)

// NewTestLogger creates a new recording logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{}
}

// Debug records a debug message.
func (l *TestLogger) Debug(msg string, keysAndValues ...any) { l.add("debug", msg, keysAndValues) }

// Info records an info message.
func (l *TestLogger) Info(msg string, keysAndValues ...any) { l.add("info", msg, keysAndValues) }

// Warn records a warning.
func (l *TestLogger) Warn(msg string, keysAndValues ...any) { l.add("warn", msg, keysAndValues) }

// Error records an error message.
func (l *TestLogger) Error(msg string, keysAndValues ...any) { l.add("error", msg, keysAndValues) }

// Entries returns a copy of all recorded messages.
func (l *TestLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]LogEntry(nil), l.entries...)
}

// Messages returns the messages recorded at level.
func (l *TestLogger) Messages(level string) []string {
	var msgs []string
	for _, e := range l.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Msg)
		}
	}

	return msgs
}

func (l *TestLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, KeysAndValues: kv})
}
