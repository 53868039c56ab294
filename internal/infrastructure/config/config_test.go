package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "~/.local/share/shell/apps", cfg.Apps.Root)
	assert.Equal(t, 5*time.Second, cfg.Apps.DiscoveryTimeout)
	assert.Equal(t, float64(96), cfg.Apps.PerInstanceMB)
	assert.Equal(t, float64(64), cfg.Apps.BaselineMB)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 16, cfg.Focus.HistorySize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APPS_ROOT", "/srv/apps")
	t.Setenv("APPS_DISCOVERY_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FOCUS_HISTORY_SIZE", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/srv/apps", cfg.Apps.Root)
	assert.Equal(t, 2*time.Second, cfg.Apps.DiscoveryTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4, cfg.Focus.HistorySize)
}

func TestLoadOrDefaultMatchesDefaults(t *testing.T) {
	cfg := LoadOrDefault()
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}
