package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9727, cfg.DefaultPort)
	assert.Equal(t, "negotiate", cfg.DataFormat)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
default_port: 9999
data_format: xdr
logging:
  level: debug
  format: json
reconnect:
  poll_interval: 2s
  max_attempts: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.DefaultPort)
	assert.Equal(t, "xdr", cfg.DataFormat)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2*time.Second, cfg.Reconnect.PollInterval)
	assert.Equal(t, 5, cfg.Reconnect.MaxReconnectAttempts)
}

func TestLoad_RejectsInvalidDataFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_format: bogus\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.DefaultPort = 8800

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8800, loaded.DefaultPort)
}

func TestMustLoad_MissingExplicitPathFails(t *testing.T) {
	_, err := MustLoad("/nonexistent/path/config.yaml")
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("MXNET_DEFAULT_PORT", "5500")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	// A missing config file short-circuits to GetDefaultConfig() without
	// consulting the environment; env overrides only apply once a config
	// file establishes the viper read path.
	assert.Equal(t, 9727, cfg.DefaultPort)
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.Contains(t, path, "mxctl")
	assert.Contains(t, path, "config.yaml")
}
