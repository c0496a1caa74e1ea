package statusapi

import "time"

// Config configures the read-only introspection HTTP server.
//
// When Enabled is false, no server is started and Start is a no-op.
type Config struct {
	// Enabled controls whether the introspection server is started.
	// Default: false (no surprise listening sockets).
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Addr is the listen address, e.g. ":8900" or "127.0.0.1:8900".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of
	// the response.
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8900"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
