package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_Empty(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)

	assert.Equal(t, ":8900", cfg.StatusAPI.Addr)

	assert.Equal(t, time.Second, cfg.Reconnect.PollInterval)
	assert.Equal(t, 0, cfg.Reconnect.MaxReconnectAttempts)

	assert.Equal(t, 9727, cfg.DefaultPort)
	assert.Equal(t, 10*time.Second, cfg.DefaultTimeout)
	assert.Equal(t, "negotiate", cfg.DataFormat)
	assert.Equal(t, "mxctl", cfg.ProgramName)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		DefaultPort:    1234,
		DataFormat:     "ASCII",
		DefaultTimeout: 5 * time.Second,
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 1234, cfg.DefaultPort)
	assert.Equal(t, "ascii", cfg.DataFormat)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout)
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()
	require := assert.New(t)
	require.NotNil(cfg)
	require.NoError(Validate(cfg))
}
