package mxnet

import (
	"context"
	"sync"
)

// CallbackTypeMask selects which kinds of change a callback fires on.
type CallbackTypeMask uint32

const (
	CallbackTypeValueChanged CallbackTypeMask = 1 << 0
	CallbackTypePoll         CallbackTypeMask = 1 << 1
	CallbackTypeFunction     CallbackTypeMask = 1 << 2
)

// Handler is invoked when a registered callback fires. It receives the
// field it was registered against and the new Value the server reported.
type Handler func(ctx context.Context, field *NetworkField, value *Value)

// Callback is a live server-side subscription on one field. Its ID is
// reassigned across a reconnect, since the server that issued the
// original ID no longer remembers the registration.
type Callback struct {
	id       uint32
	field    *NetworkField
	typeMask CallbackTypeMask
	handler  Handler
	server   *Server
}

// ID returns the callback's current server-assigned identifier (top bit
// set, per the CALLBACK opcode dispatch rule).
func (c *Callback) ID() uint32 { return c.id }

// callbackRegistry is the C9 component: the live set of callbacks a
// Server has registered with its peer, dispatched by ID when a CALLBACK
// message arrives and reissued in order after a reconnect.
type callbackRegistry struct {
	mu    sync.Mutex
	byID  map[uint32]*Callback
	order []*Callback
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{byID: make(map[uint32]*Callback)}
}

func (r *callbackRegistry) add(cb *Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[cb.id] = cb
	r.order = append(r.order, cb)
}

func (r *callbackRegistry) remove(id uint32) (*Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	delete(r.byID, id)
	for i, c := range r.order {
		if c == cb {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return cb, true
}

func (r *callbackRegistry) snapshot() []*Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Callback, len(r.order))
	copy(out, r.order)
	return out
}

func (r *callbackRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// dispatch decodes the Value carried by an unsolicited CALLBACK message
// and invokes the matching Handler. A callback that arrives while this
// Server is already inside another callback's Handler is still dispatched
// (the reentrancy guard only blocks the client from issuing new RPCs from
// inside a handler, not the server from notifying it); the guard is set
// for the duration of the handler invocation.
func (r *callbackRegistry) dispatch(ctx context.Context, h *header, body []byte) {
	r.mu.Lock()
	cb, ok := r.byID[h.MessageID]
	r.mu.Unlock()
	if !ok {
		return
	}

	codec, err := codecFor(cb.server.dataFormat)
	if err != nil {
		return
	}
	field := cb.field
	value, err := codec.Decode(body, field.datatype, field.dims, cb.server.use64BitLongs)
	if err != nil {
		return
	}

	cb.server.callbackInProgress.Store(true)
	defer cb.server.callbackInProgress.Store(false)
	cb.handler(ctx, field, value)
}

// reRegisterAll reissues ADD_CALLBACK for every live callback after a
// reconnect, in registration order, replacing each Callback's id with the
// one the reconnected server assigns. A callback whose field can no
// longer be resolved (e.g. a record removed from the database) is
// dropped; the caller is responsible for surfacing that loss if desired.
func (r *callbackRegistry) reRegisterAll(ctx context.Context, s *Server) error {
	for _, cb := range r.snapshot() {
		newID, err := s.addCallbackOnWire(ctx, cb.field, cb.typeMask)
		if err != nil {
			r.remove(cb.id)
			continue
		}
		r.mu.Lock()
		delete(r.byID, cb.id)
		cb.id = newID
		r.byID[cb.id] = cb
		r.mu.Unlock()
	}
	return nil
}
