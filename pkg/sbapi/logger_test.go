package sbapi_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func TestZapLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := sbapi.NewZapLogger(zap.New(core))

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET"})
	logger.Info("info", nil)
	logger.Warn("warn", nil)
	logger.Error("failed", map[string]interface{}{"error": errors.New("boom")})

	require.Equal(t, 4, logs.Len())

	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "GET", entries[0].ContextMap()["method"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestNopLoggers(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		sbapi.NopLogger.Debug("x", nil)
		sbapi.NopLogger.Error("x", nil)

		nilZap := sbapi.NewZapLogger(nil)
		nilZap.Info("x", map[string]interface{}{"k": 1})
		_ = nilZap.Sync()
	})
}
