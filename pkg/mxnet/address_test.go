package mxnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIdentifierWithHost(t *testing.T) {
	a, err := ParseIdentifier("beamline1:motors.sample_x")
	require.NoError(t, err)
	require.Equal(t, "beamline1", a.Host)
	require.Equal(t, "", a.Args)
	require.Equal(t, "motors", a.Record)
	require.Equal(t, "sample_x", a.Field)
	require.Equal(t, "motors.sample_x", a.RecordField())
}

func TestParseIdentifierWithArgs(t *testing.T) {
	a, err := ParseIdentifier("beamline1@9999:motors.sample_x")
	require.NoError(t, err)
	require.Equal(t, "beamline1", a.Host)
	require.Equal(t, "9999", a.Args)
}

func TestParseIdentifierNoHost(t *testing.T) {
	a, err := ParseIdentifier("motors.sample_x")
	require.NoError(t, err)
	require.Equal(t, "", a.Host)
	require.Equal(t, "motors", a.Record)
	require.Equal(t, "sample_x", a.Field)
}

func TestParseIdentifierRejectsMissingDot(t *testing.T) {
	_, err := ParseIdentifier("beamline1:motors")
	require.Error(t, err)
}

func TestAddressEndpointUnixSocket(t *testing.T) {
	a, err := ParseIdentifier("unix@/tmp/mx.sock:r.f")
	require.NoError(t, err)
	network, target := a.endpoint(9727)
	require.Equal(t, "unix", network)
	require.Equal(t, "/tmp/mx.sock", target)
}

func TestAddressEndpointTCPDefaultPort(t *testing.T) {
	a, err := ParseIdentifier("beamline1:r.f")
	require.NoError(t, err)
	network, target := a.endpoint(9727)
	require.Equal(t, "tcp", network)
	require.Equal(t, "beamline1:9727", target)
}

func TestDirectoryRegisterAndLookup(t *testing.T) {
	dir := NewDirectory()
	a, err := ParseIdentifier("beamline1:r.f")
	require.NoError(t, err)

	s := newServer(a, DefaultServerOptions())
	dir.register(a, 9727, s)

	got, ok := dir.lookup(a, 9727)
	require.True(t, ok)
	require.Same(t, s, got)

	dir.Remove(s)
	_, ok = dir.lookup(a, 9727)
	require.False(t, ok)
}
