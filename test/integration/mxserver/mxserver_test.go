// Package mxserver exercises pkg/mxnet end to end against the in-process
// fake server in pkg/mxnet/mxnettest, covering real socket framing,
// reconnect, and callback re-registration without a dependency on an
// actual MX peer or testcontainers.
package mxserver

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openmx/mxnet/pkg/mxnet"
	"github.com/openmx/mxnet/pkg/mxnet/mxnettest"
	"github.com/openmx/mxnet/pkg/mxnet/wire"
)

func startFake(t *testing.T) *mxnettest.Server {
	t.Helper()
	srv, err := mxnettest.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

// identifierFor builds a "host@port:record.field" identifier pointing at
// fake's listener, in the host[@args]:record.field form ParseIdentifier
// expects.
func identifierFor(t *testing.T, fake *mxnettest.Server, recordField string) string {
	t.Helper()
	host, port, err := net.SplitHostPort(fake.Addr())
	require.NoError(t, err)
	return host + "@" + port + ":" + recordField
}

func openTestServer(t *testing.T, fake *mxnettest.Server, recordField string, opts mxnet.ServerOptions) *mxnet.Server {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dir := mxnet.NewDirectory()
	s, err := mxnet.Open(ctx, dir, identifierFor(t, fake, recordField), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetArrayByNameRoundTrip(t *testing.T) {
	fake := startFake(t)
	fake.SetField("sample_x.position", wire.DatatypeDouble, nil, wire.NewDouble(12.5))

	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = 0
	s := openTestServer(t, fake, "sample_x.position", opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := s.GetArray(ctx, "sample_x.position")
	require.NoError(t, err)
	got, err := v.Float64()
	require.NoError(t, err)
	require.Equal(t, 12.5, got)
}

func TestPutArrayThenGetArrayByHandle(t *testing.T) {
	fake := startFake(t)
	fake.SetField("motor1.velocity", wire.DatatypeDouble, nil, wire.NewDouble(0))

	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = 0
	s := openTestServer(t, fake, "motor1.velocity", opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.PutArray(ctx, "motor1.velocity", wire.NewDouble(3.75)))

	// First GetArray already resolved and cached a handle via
	// GET_NETWORK_HANDLE during PutArray; this call exercises the
	// GET_ARRAY_BY_HANDLE path rather than by-name.
	v, err := s.GetArray(ctx, "motor1.velocity")
	require.NoError(t, err)
	got, err := v.Float64()
	require.NoError(t, err)
	require.Equal(t, 3.75, got)
}

func TestReconnectAfterConnectionDrop(t *testing.T) {
	fake := startFake(t)
	fake.SetField("shutter.state", wire.DatatypeLong, nil, wire.NewLong(0))

	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = 0
	opts.ReconnectPollInterval = 10 * time.Millisecond
	s := openTestServer(t, fake, "shutter.state", opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.GetArray(ctx, "shutter.state")
	require.NoError(t, err)
	require.Equal(t, mxnet.StatusConnected, s.Status())

	// Sever the connection from the server side without stopping the
	// listener; the next client call should transparently reconnect.
	require.NoError(t, fake.DropConnection())
	fake.SetField("shutter.state", wire.DatatypeLong, nil, wire.NewLong(1))

	require.Eventually(t, func() bool {
		v, err := s.GetArray(ctx, "shutter.state")
		if err != nil {
			return false
		}
		got, err := v.Int64()
		return err == nil && got == 1
	}, 5*time.Second, 50*time.Millisecond)

	require.Equal(t, mxnet.StatusReconnected, s.Status())
}

func TestCallbackFiresOnUnsolicitedMessage(t *testing.T) {
	fake := startFake(t)
	fake.SetField("beam.current", wire.DatatypeDouble, nil, wire.NewDouble(100))

	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = 0
	opts.ReconnectPollInterval = 10 * time.Millisecond
	s := openTestServer(t, fake, "beam.current", opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	var seen []float64
	cb, err := s.AddCallback(ctx, "beam.current", mxnet.CallbackTypeValueChanged,
		func(_ context.Context, _ *mxnet.NetworkField, v *mxnet.Value) {
			f, _ := v.Float64()
			mu.Lock()
			seen = append(seen, f)
			mu.Unlock()
		})
	require.NoError(t, err)
	defer s.DeleteCallback(ctx, cb)

	require.NoError(t, fake.SendCallback("beam.current", cb.ID(), wire.NewDouble(95.0)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 1 && seen[0] == 95.0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCallbackReRegistersAcrossReconnect(t *testing.T) {
	fake := startFake(t)
	fake.SetField("beam.current", wire.DatatypeDouble, nil, wire.NewDouble(100))

	opts := mxnet.DefaultServerOptions()
	opts.DefaultPort = 0
	opts.ReconnectPollInterval = 10 * time.Millisecond
	s := openTestServer(t, fake, "beam.current", opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var mu sync.Mutex
	var seen []float64
	cb, err := s.AddCallback(ctx, "beam.current", mxnet.CallbackTypeValueChanged,
		func(_ context.Context, _ *mxnet.NetworkField, v *mxnet.Value) {
			f, _ := v.Float64()
			mu.Lock()
			seen = append(seen, f)
			mu.Unlock()
		})
	require.NoError(t, err)

	require.NoError(t, fake.DropConnection())

	// Force a reconnect (which re-registers the callback under a new id)
	// by issuing a plain GetArray; the fake assigns a fresh callback id on
	// each ADD_CALLBACK, so the old id in cb is now stale.
	require.Eventually(t, func() bool {
		_, err := s.GetArray(ctx, "beam.current")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, fake.SendCallback("beam.current", cb.ID(), wire.NewDouble(42.0)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 1 && seen[len(seen)-1] == 42.0
	}, 5*time.Second, 50*time.Millisecond)
}
