package zaplog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arloliu/cassorm/contrib/logging/zaplog"
)

func TestLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zaplog.New(zap.New(core))

	logger.Debug("statement executed", "kind", "select", "rows", 3)
	logger.Info("connected", "hosts", "127.0.0.1")
	logger.Warn("server warning", "warning", "tombstones")
	logger.Error("statement failed", "error", "timeout")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, level := range levels {
		assert.Equal(t, level, entries[i].Level)
	}

	assert.Equal(t, "statement executed", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "select", fields["kind"])
	assert.Equal(t, int64(3), fields["rows"])
}

func TestLoggerRespectsCoreLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := zaplog.New(zap.New(core)).Named("cassorm")

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "cassorm", entries[0].LoggerName)
}

func TestNilLoggerIsNop(t *testing.T) {
	logger := zaplog.New(nil)
	assert.NotPanics(t, func() {
		logger.Info("ignored", "k", "v")
	})
	assert.NoError(t, logger.Sync())
}
