package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/graphlens/internal/config"
	"go.uber.org/zap"
)

func TestGetLoggerBeforeInitialization(t *testing.T) {
	// Must run before InitializeLogger stores the global instance.
	if globalLogger.Load() != nil {
		t.Skip("global logger already initialized by another test")
	}
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("fallback logger works") })
}

func TestInitializeLogger(t *testing.T) {
	InitializeLogger(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "graphlens-test",
		LogFile:     t.TempDir() + "/test.log",
		MaxSize:     1,
	})

	logger := GetLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	// Initialization is once-only; a second call must not replace the
	// stored logger.
	InitializeLogger(config.LoggerConfig{Level: "error"})
	assert.Same(t, logger, GetLogger())

	assert.NotPanics(t, Sync)
}

func TestGetEncoder(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, getEncoder("console"))
	assert.NotNil(t, getEncoder("json"))
	assert.NotNil(t, getEncoder("anything-else"))
}
