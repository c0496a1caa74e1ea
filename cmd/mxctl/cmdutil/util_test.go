package cmdutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmx/mxnet/pkg/config"
	"github.com/openmx/mxnet/pkg/mxnet"
)

func TestServerOptions_DefaultsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	prevFlags := Flags
	Flags = &GlobalFlags{}
	defer func() { Flags = prevFlags }()

	opts, err := ServerOptions(cfg, false, false)
	require.NoError(t, err)

	assert.Equal(t, cfg.DefaultPort, opts.DefaultPort)
	assert.Equal(t, cfg.DefaultTimeout, opts.Timeout)
	assert.Equal(t, mxnet.FormatUnknown, opts.RequestedFormat)
	assert.Nil(t, opts.Metrics)
	assert.Nil(t, opts.Tracer)
}

func TestServerOptions_FlagsOverrideConfig(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	prevFlags := Flags
	Flags = &GlobalFlags{DataFormat: "xdr", Use64BitLongs: true}
	defer func() { Flags = prevFlags }()

	opts, err := ServerOptions(cfg, true, true)
	require.NoError(t, err)

	assert.Equal(t, mxnet.FormatXDR, opts.RequestedFormat)
	assert.True(t, opts.Use64BitLongs)
	assert.NotNil(t, opts.Metrics)
	assert.NotNil(t, opts.Tracer)
}

func TestServerOptions_UnknownDataFormat(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	prevFlags := Flags
	Flags = &GlobalFlags{DataFormat: "bogus"}
	defer func() { Flags = prevFlags }()

	_, err := ServerOptions(cfg, false, false)
	require.Error(t, err)
}
