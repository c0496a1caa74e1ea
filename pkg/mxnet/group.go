package mxnet

import "context"

// GroupOpKind selects the operation one GroupOp performs within a
// PerformGroup call.
type GroupOpKind int

const (
	GroupOpGet GroupOpKind = iota
	GroupOpPut
)

// GroupOp is one operation within a synchronous group: a batch of
// GET_ARRAY/PUT_ARRAY requests pipelined onto the wire back to back, with
// their replies collected in the same order. This amortizes per-request
// round-trip latency across many fields in one exchange, the same
// motivation as the original client library's synchronous group
// primitive.
type GroupOp struct {
	Kind  GroupOpKind
	Name  string
	Value *Value // required for GroupOpPut, ignored for GroupOpGet
}

// GroupResult is the outcome of one GroupOp within a PerformGroup call.
type GroupResult struct {
	Value *Value // set for a successful GroupOpGet
	Err   error
}

// PerformGroup pipelines every op onto the connection before waiting for
// any reply, then collects replies in request order. It holds the
// connection's RPC lock for the whole batch, so no other RPC on this
// Server can interleave with a group in flight.
//
// Unlike the individual Get/PutArray calls, a group does not retry a
// stale handle or a lost connection mid-batch. If a send fails,
// PerformGroup returns that error and no results. If waiting for a reply
// fails, that op and every later op in the batch report the same failure
// without being waited for, since the connection's message-id sequencing
// cannot be trusted to recover mid-pipeline.
func (s *Server) PerformGroup(ctx context.Context, ops []GroupOp) ([]GroupResult, error) {
	if s.callbackInProgress.Load() {
		return nil, ErrCallbackInProgress
	}
	if err := s.ensureConnected(ctx); err != nil {
		return nil, err
	}

	s.rpcLock.Lock()
	defer s.rpcLock.Unlock()

	type pending struct {
		id   uint32
		op   GroupOp
		dt   Datatype
		dims []int
	}
	plan := make([]pending, 0, len(ops))

	for _, op := range ops {
		field := s.Field(op.Name)
		dt, dims, err := s.ensureFieldMetadataLocked(ctx, field)
		if err != nil {
			return nil, err
		}

		id := s.nextMessageID()
		var opcode uint32
		var body []byte
		switch op.Kind {
		case GroupOpGet:
			opcode = OpGetArrayByName
			body = []byte(op.Name)
		case GroupOpPut:
			opcode = OpPutArrayByName
			codec, cerr := codecFor(s.dataFormat)
			if cerr != nil {
				return nil, cerr
			}
			encoded, eerr := encodeValueGrowing(codec, op.Value, s.use64BitLongs)
			if eerr != nil {
				return nil, WrapError(ErrorKindCorruptDataStructure, eerr, "encoding group PUT body")
			}
			nameBytes := append([]byte(op.Name), 0)
			body = append(nameBytes, encoded...)
		}

		if err := s.sendMessage(ctx, opcode, 0, uint32(dt), id, body); err != nil {
			return nil, err
		}
		plan = append(plan, pending{id: id, op: op, dt: dt, dims: dims})
	}

	results := make([]GroupResult, len(plan))
	for i, p := range plan {
		h, body, err := s.waitFor(ctx, p.id, s.opts.Timeout)
		if err != nil {
			for j := i; j < len(plan); j++ {
				results[j] = GroupResult{Err: err}
			}
			break
		}
		if h.StatusCode != 0 {
			results[i] = GroupResult{Err: &Error{Kind: ErrorKind(h.StatusCode), Message: string(body)}}
			continue
		}
		if p.op.Kind == GroupOpGet {
			v, derr := s.decodeFieldBody(body, p.dt, p.dims)
			results[i] = GroupResult{Value: v, Err: derr}
		}
	}
	return results, nil
}

// ensureFieldMetadataLocked is ensureFieldMetadata without the GET_FIELD_TYPE
// round trip going through s.call's rpcLock, since PerformGroup already
// holds it for the duration of the batch. Field type must already be
// known (from a prior Get/PutArray or AddCallback call on the same
// field); PerformGroup does not perform discovery calls of its own within
// the batch, since doing so would require re-entering the RPC lock it
// already holds.
func (s *Server) ensureFieldMetadataLocked(ctx context.Context, field *NetworkField) (Datatype, []int, error) {
	field.mu.Lock()
	dt, dims := field.datatype, field.dims
	known := field.datatype != 0
	field.mu.Unlock()
	if !known {
		return 0, nil, NewError(ErrorKindIllegalArgument,
			"field %q type unknown; call GetArray, PutArray or AddCallback on it before grouping", field.name)
	}
	return dt, dims, nil
}
