package mxnet

import (
	"context"
	"sync"
)

// NetworkField is the C7 component: a cached reference to one named field
// on a Server, holding the server-assigned (record_handle, field_handle)
// pair so repeated GET/PUT calls skip the name-lookup round trip.
//
// The cache is generation-tagged rather than flag-tagged: a handle is
// valid only if its recorded generation still matches the Server's
// current generation counter, which the Server bumps on every successful
// (re)connect. This makes "every field's cache goes stale on reconnect"
// a property of the comparison rather than something that has to be
// remembered to clear explicitly on every field in the map.
type NetworkField struct {
	mu sync.Mutex

	server *Server
	name   string // "record.field"

	recordHandle uint32
	fieldHandle  uint32
	generation   uint64
	valid        bool

	// datatype and dims cache the result of GET_FIELD_TYPE, filled in on
	// first handle resolution and reused by the callback dispatcher to
	// decode CALLBACK bodies without a further round trip.
	datatype Datatype
	dims     []int
}

// Name returns the "record.field" identifier this handle was created for.
func (f *NetworkField) Name() string { return f.name }

const invalidHandle = 0xFFFFFFFF

// handles resolves and returns the field's (record_handle, field_handle)
// pair, issuing GET_NETWORK_HANDLE if the cached pair is missing or
// stale. If the server has been observed not to implement network
// handles (a pre-1.5.0 peer), it returns ok=false so callers fall back to
// a by-name request instead.
func (f *NetworkField) handles(ctx context.Context) (recordHandle, fieldHandle uint32, ok bool, err error) {
	if !f.server.supportsNetworkHandles.Load() {
		return 0, 0, false, nil
	}

	f.mu.Lock()
	if f.valid && f.generation == f.server.generation.Load() {
		rh, fh := f.recordHandle, f.fieldHandle
		f.mu.Unlock()
		return rh, fh, true, nil
	}
	f.mu.Unlock()

	rh, fh, dt, dims, err := f.server.resolveHandle(ctx, f.name)
	if err != nil {
		if ge, ok2 := err.(*Error); ok2 && ge.Kind == ErrorKindNotYetImplemented {
			f.server.supportsNetworkHandles.Store(false)
			return 0, 0, false, nil
		}
		return 0, 0, false, err
	}

	f.mu.Lock()
	f.recordHandle, f.fieldHandle = rh, fh
	f.datatype, f.dims = dt, dims
	f.generation = f.server.generation.Load()
	f.valid = true
	f.mu.Unlock()
	return rh, fh, true, nil
}

// invalidate marks the cached handle pair stale, forcing the next access
// to re-resolve it by name. Used after a BAD_HANDLE reply.
func (f *NetworkField) invalidate() {
	f.mu.Lock()
	f.valid = false
	f.mu.Unlock()
}
