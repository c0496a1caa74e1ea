package mxnet

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/openmx/mxnet/pkg/mxnet/wire"
)

// call sends one request and waits for its matching reply, handling the
// connection-lost-and-retry-once path, the reentrancy guard that forbids
// issuing a new RPC from inside a callback Handler, and error-reply
// decoding. A non-zero reply STATUS_CODE always decodes its body as a raw
// UTF-8 message regardless of the negotiated data format: the data format
// only governs array-valued bodies, and an error reply carries no array.
func (s *Server) call(ctx context.Context, opcode uint32, dataType uint32, body []byte) (*header, []byte, error) {
	if s.callbackInProgress.Load() {
		return nil, nil, ErrCallbackInProgress
	}
	if err := s.ensureConnected(ctx); err != nil {
		return nil, nil, err
	}

	s.rpcLock.Lock()
	defer s.rpcLock.Unlock()

	h, respBody, err := s.callOnce(ctx, opcode, dataType, body)
	if isConnectionLost(err) {
		if rerr := s.reconnect(ctx); rerr != nil {
			return nil, nil, rerr
		}
		h, respBody, err = s.callOnce(ctx, opcode, dataType, body)
	}
	return h, respBody, err
}

func (s *Server) callOnce(ctx context.Context, opcode uint32, dataType uint32, body []byte) (*header, []byte, error) {
	id := s.nextMessageID()
	end := s.tracerOr().StartRequest(ctx, s.address.Raw, "", opcode)
	start := time.Now()

	err := s.sendMessage(ctx, opcode, 0, dataType, id, body)
	if err != nil {
		s.metricsOr().RequestCompleted(opcode, time.Since(start), err)
		end(err)
		return nil, nil, err
	}

	timeout := s.opts.Timeout
	h, respBody, err := s.waitFor(ctx, id, timeout)
	s.metricsOr().RequestCompleted(opcode, time.Since(start), err)
	end(err)
	if err != nil {
		return nil, nil, err
	}

	if h.StatusCode != 0 {
		return h, nil, &Error{Kind: ErrorKind(h.StatusCode), Message: string(respBody)}
	}
	return h, respBody, nil
}

func isConnectionLost(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrorKindNetworkConnectionLost
}

func isBadHandle(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrorKindBadHandle
}

func isNotYetImplemented(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrorKindNotYetImplemented
}

// getOptionRaw/setOptionRaw are the low-level GET_OPTION/SET_OPTION
// exchanges used during bring-up, before a data format is negotiated and
// while the reply body is still a fixed XDR envelope rather than an
// array value.
func (s *Server) getOptionRaw(ctx context.Context, optionID uint32) (uint32, error) {
	req, err := wire.MarshalOptionValue(wire.OptionValue{OptionID: optionID})
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "encoding GET_OPTION request")
	}
	_, respBody, err := s.call(ctx, OpGetOption, 0, req)
	if err != nil {
		return 0, err
	}
	val, err := wire.UnmarshalOptionValue(respBody)
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "decoding GET_OPTION reply")
	}
	return val.Value, nil
}

func (s *Server) setOptionRaw(ctx context.Context, optionID, value uint32) error {
	req, err := wire.MarshalOptionValue(wire.OptionValue{OptionID: optionID, Value: value})
	if err != nil {
		return WrapError(ErrorKindCorruptDataStructure, err, "encoding SET_OPTION request")
	}
	_, _, err = s.call(ctx, OpSetOption, 0, req)
	return err
}

// GetOption returns the current value of a connection option.
func (s *Server) GetOption(ctx context.Context, optionID uint32) (uint32, error) {
	return s.getOptionRaw(ctx, optionID)
}

// SetOption sets a connection option.
func (s *Server) SetOption(ctx context.Context, optionID, value uint32) error {
	return s.setOptionRaw(ctx, optionID, value)
}

// resolveHandle performs GET_NETWORK_HANDLE for name, returning the
// handle pair together with the field's datatype and dimensions so the
// caller can cache all four without a further GET_FIELD_TYPE round trip.
func (s *Server) resolveHandle(ctx context.Context, name string) (recordHandle, fieldHandle uint32, dt Datatype, dims []int, err error) {
	_, respBody, err := s.call(ctx, OpGetNetworkHandle, 0, []byte(name))
	if err != nil {
		return 0, 0, 0, nil, err
	}
	hp, err := wire.UnmarshalHandlePair(respBody)
	if err != nil {
		return 0, 0, 0, nil, WrapError(ErrorKindCorruptDataStructure, err, "decoding GET_NETWORK_HANDLE reply")
	}
	dt2, dims2, err := s.GetFieldType(ctx, name)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	return hp.RecordHandle, hp.FieldHandle, dt2, dims2, nil
}

// GetFieldType fetches the datatype and dimensions GET_FIELD_TYPE reports
// for a named field.
func (s *Server) GetFieldType(ctx context.Context, name string) (Datatype, []int, error) {
	_, respBody, err := s.call(ctx, OpGetFieldType, 0, []byte(name))
	if err != nil {
		return 0, nil, err
	}
	info, err := wire.UnmarshalFieldTypeInfo(respBody)
	if err != nil {
		return 0, nil, WrapError(ErrorKindCorruptDataStructure, err, "decoding GET_FIELD_TYPE reply")
	}
	dims := make([]int, len(info.Dimensions))
	for i, d := range info.Dimensions {
		dims[i] = int(d)
	}
	return Datatype(info.Datatype), dims, nil
}

func encodeHandlePair(recordHandle, fieldHandle uint32) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint32(buf[0:4], recordHandle)
	binary.BigEndian.PutUint32(buf[4:8], fieldHandle)
	return buf
}

// GetArray reads the current value of a named field, preferring the
// cached handle path and transparently falling back to a by-name request
// exactly once if the handle turns out to be stale.
func (s *Server) GetArray(ctx context.Context, name string) (*Value, error) {
	field := s.Field(name)
	rh, fh, ok, err := field.handles(ctx)
	if err != nil {
		return nil, err
	}

	var dt Datatype
	var dims []int
	var respBody []byte

	if ok {
		dt, dims = field.datatype, field.dims
		_, respBody, err = s.call(ctx, OpGetArrayByHandle, uint32(dt), encodeHandlePair(rh, fh))
		if isBadHandle(err) {
			field.invalidate()
			return s.getArrayByName(ctx, name)
		}
	} else {
		return s.getArrayByName(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	return s.decodeFieldBody(respBody, dt, dims)
}

func (s *Server) getArrayByName(ctx context.Context, name string) (*Value, error) {
	dt, dims, err := s.GetFieldType(ctx, name)
	if err != nil {
		return nil, err
	}
	_, respBody, err := s.call(ctx, OpGetArrayByName, uint32(dt), []byte(name))
	if err != nil {
		return nil, err
	}
	return s.decodeFieldBody(respBody, dt, dims)
}

func (s *Server) decodeFieldBody(body []byte, dt Datatype, dims []int) (*Value, error) {
	codec, err := codecFor(s.dataFormat)
	if err != nil {
		return nil, err
	}
	v, err := codec.Decode(body, dt, dims, s.use64BitLongs)
	if err != nil {
		return nil, WrapError(ErrorKindCorruptDataStructure, err, "decoding array body")
	}
	return v, nil
}

// PutArray writes value to a named field, retrying once by name if the
// cached handle turns out to be stale. The value is encoded into a
// scratch buffer that encodeValueGrowing grows until the encoding fits;
// if it still does not fit, PutArray returns an
// ErrorKindCorruptDataStructure error wrapping the
// ErrorKindWouldExceedLimit one.
func (s *Server) PutArray(ctx context.Context, name string, value *Value) error {
	field := s.Field(name)
	rh, fh, ok, err := field.handles(ctx)
	if err != nil {
		return err
	}

	codec, err := codecFor(s.dataFormat)
	if err != nil {
		return err
	}
	encoded, err := encodeValueGrowing(codec, value, s.use64BitLongs)
	if err != nil {
		return WrapError(ErrorKindCorruptDataStructure, err, "encoding array body")
	}

	if ok {
		_, _, err = s.call(ctx, OpPutArrayByHandle, uint32(value.Datatype), append(encodeHandlePair(rh, fh), encoded...))
		if isBadHandle(err) {
			field.invalidate()
			return s.putArrayByName(ctx, name, value.Datatype, encoded)
		}
		return err
	}
	return s.putArrayByName(ctx, name, value.Datatype, encoded)
}

func (s *Server) putArrayByName(ctx context.Context, name string, dt Datatype, encoded []byte) error {
	nameBytes := []byte(name)
	body := make([]byte, 0, len(nameBytes)+1+len(encoded))
	body = append(body, nameBytes...)
	body = append(body, 0)
	body = append(body, encoded...)
	_, _, err := s.call(ctx, OpPutArrayByName, uint32(dt), body)
	return err
}

// encodeValueGrowing encodes v, growing a scratch buffer by the reported
// shortfall on each *wire.ShortfallError until it fits, for at most ten
// attempts; after that it returns an ErrorKindWouldExceedLimit error.
func encodeValueGrowing(codec wire.Codec, v *Value, use64 bool) ([]byte, error) {
	size := 256
	for attempt := 0; attempt < 10; attempt++ {
		buf := make([]byte, size)
		n, err := codec.Encode(v, buf, use64)
		if err == nil {
			return buf[:n], nil
		}
		var shortfall *wire.ShortfallError
		if !asShortfall(err, &shortfall) {
			return nil, err
		}
		size += shortfall.Shortfall
	}
	return nil, NewError(ErrorKindWouldExceedLimit, "value too large to encode after repeated growth")
}

func asShortfall(err error, target **wire.ShortfallError) bool {
	if sf, ok := err.(*wire.ShortfallError); ok {
		*target = sf
		return true
	}
	return false
}

// SetClientInfo reports this client's username and program name again,
// e.g. after changing ServerOptions.Username mid-session.
func (s *Server) SetClientInfo(ctx context.Context) error {
	return s.reportClientInfo(ctx)
}

// GetAttribute reads one of a field's floating-point attributes (poll
// period, value-change threshold).
func (s *Server) GetAttribute(ctx context.Context, name string, attributeID uint32) (float64, error) {
	req, err := wire.MarshalAttributeValue(wire.AttributeValue{AttributeID: attributeID})
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "encoding GET_ATTRIBUTE request")
	}
	body := append([]byte(name+"\x00"), req...)
	_, respBody, err := s.call(ctx, OpGetAttribute, 0, body)
	if err != nil {
		return 0, err
	}
	val, err := wire.UnmarshalAttributeValue(respBody)
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "decoding GET_ATTRIBUTE reply")
	}
	return val.Value, nil
}

// SetAttribute sets one of a field's floating-point attributes.
func (s *Server) SetAttribute(ctx context.Context, name string, attributeID uint32, value float64) error {
	req, err := wire.MarshalAttributeValue(wire.AttributeValue{AttributeID: attributeID, Value: value})
	if err != nil {
		return WrapError(ErrorKindCorruptDataStructure, err, "encoding SET_ATTRIBUTE request")
	}
	body := append([]byte(name+"\x00"), req...)
	_, _, err = s.call(ctx, OpSetAttribute, 0, body)
	return err
}

// AddCallback registers handler to fire whenever the named field changes
// according to typeMask, returning the live Callback handle.
func (s *Server) AddCallback(ctx context.Context, name string, typeMask CallbackTypeMask, handler Handler) (*Callback, error) {
	field := s.Field(name)
	if _, _, err := s.ensureFieldMetadata(ctx, field); err != nil {
		return nil, err
	}

	id, err := s.addCallbackOnWire(ctx, field, typeMask)
	if err != nil {
		return nil, err
	}
	cb := &Callback{id: id, field: field, typeMask: typeMask, handler: handler, server: s}
	s.callbacks.add(cb)
	s.metricsOr().CallbacksActive(1)
	return cb, nil
}

// ensureFieldMetadata makes sure field.datatype/dims are populated,
// fetching them via GET_FIELD_TYPE if this field has never been resolved.
func (s *Server) ensureFieldMetadata(ctx context.Context, field *NetworkField) (Datatype, []int, error) {
	field.mu.Lock()
	known := field.valid || field.datatype != 0
	dt, dims := field.datatype, field.dims
	field.mu.Unlock()
	if known {
		return dt, dims, nil
	}
	dt, dims, err := s.GetFieldType(ctx, field.name)
	if err != nil {
		return 0, nil, err
	}
	field.mu.Lock()
	field.datatype, field.dims = dt, dims
	field.mu.Unlock()
	return dt, dims, nil
}

func (s *Server) addCallbackOnWire(ctx context.Context, field *NetworkField, typeMask CallbackTypeMask) (uint32, error) {
	rh, fh, ok, err := field.handles(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		rh, fh = invalidHandle, invalidHandle
	}
	req, err := wire.MarshalCallbackRegistration(wire.CallbackRegistration{
		RecordHandle: rh,
		FieldHandle:  fh,
		CallbackType: uint32(typeMask),
	})
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "encoding ADD_CALLBACK request")
	}
	_, respBody, err := s.call(ctx, OpAddCallback, 0, req)
	if err != nil {
		return 0, err
	}
	reg, err := wire.UnmarshalCallbackRegistration(respBody)
	if err != nil {
		return 0, WrapError(ErrorKindCorruptDataStructure, err, "decoding ADD_CALLBACK reply")
	}
	return reg.CallbackID, nil
}

// DeleteCallback cancels a live callback registration.
func (s *Server) DeleteCallback(ctx context.Context, cb *Callback) error {
	body := make([]byte, 4)
	binary.BigEndian.PutUint32(body, cb.id)
	_, _, err := s.call(ctx, OpDeleteCallback, 0, body)
	if err != nil && !isNotYetImplemented(err) {
		return err
	}
	s.callbacks.remove(cb.id)
	s.metricsOr().CallbacksActive(-1)
	return nil
}
