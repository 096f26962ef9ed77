package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "", cfg.Server.Token)
	assert.Equal(t, 10.0, cfg.Server.RateLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOOMPLAN_SERVER_PORT", "9090")
	t.Setenv("LOOMPLAN_SERVER_TOKEN", "s3cret")
	t.Setenv("LOOMPLAN_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loomplan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server:\n  host: 0.0.0.0\n  port: 7000\nstore:\n  path: /tmp/plan.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/plan.db", cfg.Store.Path)
	// Untouched keys keep their defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
