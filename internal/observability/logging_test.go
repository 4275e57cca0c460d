package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/pdch/pdch-server/internal/config"
)

func TestNewLogger_ProductionByDefault(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "info"}, config.AppConfig{Name: "pdch-server", Env: "production"})
	require.NoError(t, err)

	require.NotPanics(t, func() { logger.DPanic("dpanic is logged only") })
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_DevelopmentPanicsOnDPanic(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "debug"}, config.AppConfig{Env: "development"})
	require.NoError(t, err)

	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	require.Panics(t, func() { logger.DPanic("boom") })
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"}, config.AppConfig{Env: "production"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
