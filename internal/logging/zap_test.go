package logging_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fivetwenty-io/shadow-nav/internal/logging"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

var _ debank.Logger = (*logging.ZapLogger)(nil)

func TestZapLogger_Levels(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewWithLogger(zap.New(core))

	logger.Debug("HTTP Request", map[string]interface{}{"method": "GET", "url": "https://pro-openapi.debank.com/v1/user/total_balance"})
	logger.Info("snapshot published", nil)
	logger.Warn("Retrying request", map[string]interface{}{"attempt": 2})
	logger.Error("request failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "HTTP Request", entries[0].Message)
	assert.Equal(t, "GET", entries[0].ContextMap()["method"])

	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.EqualValues(t, 2, entries[2].ContextMap()["attempt"])

	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].ContextMap()["error"])
}

func TestZapLogger_RespectsLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.NewWithLogger(zap.New(core))

	logger.Debug("hidden", nil)
	logger.Info("shown", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "shown", logs.All()[0].Message)
}

func TestNew(t *testing.T) {
	t.Parallel()

	logger, err := logging.New(true)
	require.NoError(t, err)
	assert.True(t, logger.Zap().Core().Enabled(zapcore.DebugLevel))

	quiet, err := logging.New(false)
	require.NoError(t, err)
	assert.False(t, quiet.Zap().Core().Enabled(zapcore.DebugLevel))
}

func TestNewWithLogger_Nil(t *testing.T) {
	t.Parallel()

	logger := logging.NewWithLogger(nil)
	assert.NotPanics(t, func() {
		logger.Info("discarded", map[string]interface{}{"k": "v"})
	})
}
