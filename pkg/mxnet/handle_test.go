package mxnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNetworkFieldCacheInvalidatedByGeneration(t *testing.T) {
	s := newServer(&Address{Host: "test", Record: "r", Field: "f"}, DefaultServerOptions())
	f := s.Field("r.f")

	f.mu.Lock()
	f.recordHandle, f.fieldHandle = 1, 2
	f.generation = s.generation.Load()
	f.valid = true
	f.mu.Unlock()

	s.generation.Add(1) // simulate a reconnect bumping the generation

	f.mu.Lock()
	stale := f.valid && f.generation == s.generation.Load()
	f.mu.Unlock()
	require.False(t, stale, "cached handle should be considered stale after a generation bump")
}

func TestNetworkFieldInvalidateForcesRefresh(t *testing.T) {
	s := newServer(&Address{Host: "test", Record: "r", Field: "f"}, DefaultServerOptions())
	f := s.Field("r.f")

	f.mu.Lock()
	f.valid = true
	f.generation = s.generation.Load()
	f.mu.Unlock()

	f.invalidate()

	f.mu.Lock()
	valid := f.valid
	f.mu.Unlock()
	require.False(t, valid)
}

func TestServerFieldIsCachedByName(t *testing.T) {
	s := newServer(&Address{Host: "test", Record: "r", Field: "f"}, DefaultServerOptions())
	a := s.Field("r.f")
	b := s.Field("r.f")
	require.Same(t, a, b)
}
