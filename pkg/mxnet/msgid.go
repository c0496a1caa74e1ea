package mxnet

import (
	"context"
	"time"

	"github.com/openmx/mxnet/internal/logger"
)

// maxMessageID is the largest value a message id can take before it wraps
// back to 1. Id 0 is never issued so that a zero-valued header field is
// unambiguously "no id assigned".
const maxMessageID = 0x7FFFFFFF

// maxStaleWindow bounds how far behind the expected id a reply may be and
// still be treated as a late, already-abandoned reply to discard rather
// than a protocol error.
const maxStaleWindow = 10

// nextMessageID issues the next id for this Server's connection,
// wrapping from maxMessageID back to 1.
func (s *Server) nextMessageID() uint32 {
	for {
		cur := s.lastMessageID.Load()
		next := cur + 1
		if next == 0 || next > maxMessageID {
			next = 1
		}
		if s.lastMessageID.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// waitFor blocks until a reply with MessageID == expected arrives,
// transparently dispatching any interleaved CALLBACK messages and
// discarding stale replies within maxStaleWindow of expected. Any other
// mismatched id is a protocol error: the peer and client have lost id
// synchronization.
func (s *Server) waitFor(ctx context.Context, expected uint32, timeout time.Duration) (*header, []byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if timeout > 0 && remaining <= 0 {
			return nil, nil, ErrTimedOut
		}

		h, body, err := s.receiveMessage(ctx, remaining)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case h.MessageID == expected:
			return h, body, nil

		case s.shortHeaderPeer && h.MessageID == 0:
			// A short-header peer never reports a MESSAGE_ID at all; every
			// reply decodes to zero. rpcLock already guarantees only one
			// request is ever in flight against such a peer, so any reply
			// we receive here is necessarily the one we're waiting for.
			return h, body, nil

		case h.opcode() == OpCallback && !h.isResponse():
			s.callbacks.dispatch(ctx, h, body)
			continue

		case isStaleReply(h.MessageID, expected):
			s.metricsOr().StaleReplyObserved()
			logger.Warn("discarding stale reply", "expected", expected, logger.KeyMessageID, h.MessageID)
			continue

		default:
			return nil, nil, WrapError(ErrorKindCorruptDataStructure, nil,
				"message id mismatch: expected %d, got %d", expected, h.MessageID)
		}
	}
}

// isStaleReply reports whether got is within maxStaleWindow ids behind
// expected, accounting for wraparound near maxMessageID.
func isStaleReply(got, expected uint32) bool {
	if got == expected {
		return false
	}
	diff := int64(expected) - int64(got)
	if diff < 0 {
		diff += maxMessageID
	}
	return diff >= 1 && diff <= maxStaleWindow
}
