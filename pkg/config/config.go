package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds mxctl's static configuration: logging, telemetry, the
// default connection parameters used when an identifier's host carries no
// explicit port or format override, and reconnect behavior.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (MXNET_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// StatusAPI contains the read-only introspection HTTP API's
	// configuration.
	StatusAPI StatusAPIConfig `mapstructure:"status_api" yaml:"status_api"`

	// DefaultPort is used for a server identifier whose host carries no
	// explicit "@port" suffix.
	DefaultPort int `mapstructure:"default_port" validate:"required,min=1,max=65535" yaml:"default_port"`

	// DefaultTimeout bounds every blocking RPC unless overridden per call.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" validate:"required,gt=0" yaml:"default_timeout"`

	// DataFormat is the data format requested during bring-up:
	// "ascii", "raw", "xdr", or "negotiate" (RAW when the peer's native
	// format and word size match this host's, XDR otherwise).
	DataFormat string `mapstructure:"data_format" validate:"required,oneof=ascii raw xdr negotiate" yaml:"data_format"`

	// Use64BitLongs requests 8-byte LONG/ULONG/HEX elements instead of
	// the default 4-byte native width.
	Use64BitLongs bool `mapstructure:"use_64bit_longs" yaml:"use_64bit_longs"`

	// Reconnect controls the reconnect-on-connection-loss behavior every
	// opened Server shares.
	Reconnect ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`

	// Username and ProgramName are reported to every server via
	// SET_CLIENT_INFO during bring-up.
	Username    string `mapstructure:"username" yaml:"username"`
	ProgramName string `mapstructure:"program_name" yaml:"program_name"`
}

// ReconnectConfig controls how a Server retries a lost connection.
type ReconnectConfig struct {
	// PollInterval is the wait between reconnect attempts.
	// Default: 1s
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	// MaxReconnectAttempts caps reconnect attempts; zero means retry
	// forever.
	MaxReconnectAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format.
	// Valid values: text, json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written.
	// Valid values: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing. When
// enabled, one span is exported per RPC (see internal/telemetry).
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled.
	// Default: false (opt-in).
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port).
	// Default: "localhost:4317".
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure controls whether to use an insecure (non-TLS) connection.
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`
}

// MetricsConfig configures the Prometheus metrics endpoint exposed by
// internal/statusapi.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// StatusAPIConfig configures the read-only introspection HTTP API.
type StatusAPIConfig struct {
	// Enabled controls whether the status API listens at all.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Addr is the listen address, e.g. ":8900".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// ReadTimeout, WriteTimeout and IdleTimeout are passed to the status
	// API's HTTP server.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages, falling back
// to built-in defaults when no config file exists at the default
// location (unlike the reference's MustLoad, a missing file is not
// fatal: mxctl has sensible defaults for every field).
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML
// format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variables and config file
// settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the MXNET_ prefix and underscores.
	// Example: MXNET_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("MXNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns a combined decode hook for time.Duration
// parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(durationDecodeHook())
}

// durationDecodeHook converts strings and numbers to time.Duration,
// enabling config files to use human-readable durations like "30s",
// "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path, using
// XDG_CONFIG_HOME if set, otherwise ~/.config, falling back to the
// current directory if the home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "mxctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mxctl")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
