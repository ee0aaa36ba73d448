package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Sandbox.Timeout)
	assert.Equal(t, "python3", cfg.Sandbox.PythonBin)
	assert.True(t, cfg.App.CascadeOnDelete)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SANDBOX_TIMEOUT_MS", "2500")
	t.Setenv("PROJECT_DELETE_CASCADE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2500*time.Millisecond, cfg.Sandbox.Timeout)
	assert.False(t, cfg.App.CascadeOnDelete)
}

func TestValidateRejectsBadTimeout(t *testing.T) {
	t.Setenv("SANDBOX_TIMEOUT_MS", "0")

	_, err := Load()
	require.Error(t, err)
}
