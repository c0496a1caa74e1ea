package config

import (
	"strings"
	"time"
)

// ApplyDefaults fills in zero-valued fields with sensible defaults after
// loading configuration from file and environment variables.
//
// Default strategy:
//   - Zero values (0, "", false) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyMetricsDefaults(&cfg.Metrics)
	applyStatusAPIDefaults(&cfg.StatusAPI)
	applyReconnectDefaults(&cfg.Reconnect)

	if cfg.DefaultPort == 0 {
		cfg.DefaultPort = 9727
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 10 * time.Second
	}
	if cfg.DataFormat == "" {
		cfg.DataFormat = "negotiate"
	}
	cfg.DataFormat = strings.ToLower(cfg.DataFormat)

	if cfg.ProgramName == "" {
		cfg.ProgramName = "mxctl"
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry tracing defaults. Tracing is
// opt-in: Enabled stays false unless the user sets it.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyMetricsDefaults sets Prometheus metrics defaults. Metrics are
// opt-in, exposed through the status API's listener rather than their own
// port.
func applyMetricsDefaults(cfg *MetricsConfig) {
	// Enabled defaults to false; no port of its own since /metrics is
	// served from StatusAPI.Addr.
}

// applyStatusAPIDefaults sets the read-only introspection API's defaults.
func applyStatusAPIDefaults(cfg *StatusAPIConfig) {
	if cfg.Addr == "" {
		cfg.Addr = ":8900"
	}
}

// applyReconnectDefaults sets reconnect-loop defaults.
func applyReconnectDefaults(cfg *ReconnectConfig) {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	// MaxReconnectAttempts defaults to 0 (retry forever).
}

// GetDefaultConfig returns a Config with every field set to its default
// value. Useful for generating a starter config file and for tests.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
