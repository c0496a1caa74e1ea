package mxnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextMessageIDIncrementsAndWraps(t *testing.T) {
	s := newServer(&Address{Host: "test", Record: "r", Field: "f"}, DefaultServerOptions())

	first := s.nextMessageID()
	second := s.nextMessageID()
	require.Equal(t, first+1, second)

	s.lastMessageID.Store(maxMessageID)
	wrapped := s.nextMessageID()
	require.Equal(t, uint32(1), wrapped)
}

func TestIsStaleReplyWithinWindow(t *testing.T) {
	require.True(t, isStaleReply(90, 100))
	require.True(t, isStaleReply(91, 101))
	require.False(t, isStaleReply(89, 100))
	require.False(t, isStaleReply(100, 100))
	require.False(t, isStaleReply(150, 100))
}

func TestIsStaleReplyWraparound(t *testing.T) {
	// expected just wrapped to 2; a reply for maxMessageID-7 (issued just
	// before the wrap) is still within the stale window.
	require.True(t, isStaleReply(maxMessageID-7, 2))
	require.False(t, isStaleReply(maxMessageID-20, 2))
}
