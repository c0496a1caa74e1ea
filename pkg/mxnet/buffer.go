package mxnet

import (
	"sync"

	"github.com/openmx/mxnet/pkg/bufpool"
)

// minBufferCapacity is the smallest buffer a MessageBuffer will allocate,
// large enough to hold a current-format header with no body.
const minBufferCapacity = 1024

// messageBuffer is the C1 component: the single growable byte buffer a
// Server uses to assemble outgoing requests and receive incoming replies.
// It never shrinks; reallocate only grows the backing array, and the
// fresh tail is always zero-filled so stale bytes from a previous, larger
// message never leak into a shorter one.
type messageBuffer struct {
	mu   sync.Mutex
	data []byte
}

func newMessageBuffer() *messageBuffer {
	b := &messageBuffer{data: bufpool.Get(minBufferCapacity)}
	return b
}

// bytes returns the current backing array. Callers must hold no
// reference across a reallocate call; ensure() returns a fresh slice
// after growing.
func (b *messageBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

func (b *messageBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// ensure grows the buffer so that len(data) >= n, preserving existing
// content and zero-filling the new tail. It is a no-op if the buffer is
// already large enough. Returns the (possibly new) backing array.
func (b *messageBuffer) ensure(n int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n <= len(b.data) {
		return b.data
	}
	if n < minBufferCapacity {
		n = minBufferCapacity
	}
	grown := bufpool.Get(n)
	copy(grown, b.data)
	for i := len(b.data); i < len(grown); i++ {
		grown[i] = 0
	}
	old := b.data
	b.data = grown
	bufpool.Put(old)
	return b.data
}

func (b *messageBuffer) free() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data != nil {
		bufpool.Put(b.data)
		b.data = nil
	}
}
