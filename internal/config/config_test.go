package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()
	v := viper.New()
	SetDefaults(v)

	assert.Equal(t, "info", v.GetString("logger.level"))
	assert.Equal(t, "console", v.GetString("logger.format"))
	assert.Equal(t, "graphlens", v.GetString("logger.service_name"))
	assert.Equal(t, 50, v.GetInt("logger.max_size"))
	assert.Equal(t, 3, v.GetInt("logger.max_backups"))
	assert.Equal(t, 14, v.GetInt("logger.max_age"))
	assert.Empty(t, v.GetStringSlice("graph.palette"))
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()
	v := viper.New()
	SetDefaults(v)
	v.Set("logger.level", "debug")
	v.Set("logger.log_file", "/tmp/graphlens.log")
	v.Set("graph.palette", []string{"#111111", "#222222"})

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/tmp/graphlens.log", cfg.Logger.LogFile)
	assert.Equal(t, "graphlens", cfg.Logger.ServiceName)
	assert.Equal(t, []string{"#111111", "#222222"}, cfg.Graph.Palette)
}

// The singleton can only be exercised once per test binary, so Load and
// Get share one test.
func TestLoadSingleton(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("logger.level", "warn")

	require.NoError(t, Load(v))
	cfg := Get()
	require.NotNil(t, cfg)
	assert.Equal(t, "warn", cfg.Logger.Level)

	// A second Load is a no-op; the first instance wins.
	other := viper.New()
	SetDefaults(other)
	other.Set("logger.level", "error")
	require.NoError(t, Load(other))
	assert.Equal(t, "warn", Get().Logger.Level)
	assert.Same(t, cfg, Get())
}
