package wire

import (
	"bytes"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Fixed-shape reply bodies are small enough, and numerous enough, that
// hand-rolling their encode/decode is wasted effort next to the
// reflection-driven codec already pulled in for the RPC envelopes
// elsewhere in the corpus. Field order below is the wire order.

// HandlePair is the body of a GET_NETWORK_HANDLE reply: the opaque
// (record_handle, field_handle) pair the server assigns a named field.
type HandlePair struct {
	RecordHandle uint32
	FieldHandle  uint32
}

// MarshalHandlePair encodes a HandlePair to XDR bytes.
func MarshalHandlePair(h HandlePair) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalHandlePair decodes a HandlePair from XDR bytes.
func UnmarshalHandlePair(data []byte) (HandlePair, error) {
	var h HandlePair
	_, err := xdr.Unmarshal(bytes.NewReader(data), &h)
	return h, err
}

// FieldTypeInfo is the body of a GET_FIELD_TYPE reply.
type FieldTypeInfo struct {
	Datatype      uint32
	NumDimensions uint32
	Dimensions    []uint32
}

// MarshalFieldTypeInfo encodes a FieldTypeInfo to XDR bytes.
func MarshalFieldTypeInfo(f FieldTypeInfo) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalFieldTypeInfo decodes a FieldTypeInfo from XDR bytes.
func UnmarshalFieldTypeInfo(data []byte) (FieldTypeInfo, error) {
	var f FieldTypeInfo
	_, err := xdr.Unmarshal(bytes.NewReader(data), &f)
	return f, err
}

// OptionValue is the body of a GET_OPTION/SET_OPTION exchange.
type OptionValue struct {
	OptionID uint32
	Value    uint32
}

// MarshalOptionValue encodes an OptionValue to XDR bytes.
func MarshalOptionValue(o OptionValue) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalOptionValue decodes an OptionValue from XDR bytes.
func UnmarshalOptionValue(data []byte) (OptionValue, error) {
	var o OptionValue
	_, err := xdr.Unmarshal(bytes.NewReader(data), &o)
	return o, err
}

// AttributeValue is the body of a GET_ATTRIBUTE/SET_ATTRIBUTE exchange.
// Attributes are always carried as doubles regardless of the field's own
// datatype (e.g. a poll period or a value-change threshold).
type AttributeValue struct {
	AttributeID uint32
	Value       float64
}

// MarshalAttributeValue encodes an AttributeValue to XDR bytes.
func MarshalAttributeValue(a AttributeValue) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalAttributeValue decodes an AttributeValue from XDR bytes.
func UnmarshalAttributeValue(data []byte) (AttributeValue, error) {
	var a AttributeValue
	_, err := xdr.Unmarshal(bytes.NewReader(data), &a)
	return a, err
}

// CallbackRegistration is the body of an ADD_CALLBACK request/reply: the
// field being watched, the callback type mask, and (in the reply) the
// server-assigned callback id with its top bit set.
type CallbackRegistration struct {
	RecordHandle uint32
	FieldHandle  uint32
	CallbackType uint32
	CallbackID   uint32
}

// MarshalCallbackRegistration encodes a CallbackRegistration to XDR bytes.
func MarshalCallbackRegistration(c CallbackRegistration) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCallbackRegistration decodes a CallbackRegistration from XDR bytes.
func UnmarshalCallbackRegistration(data []byte) (CallbackRegistration, error) {
	var c CallbackRegistration
	_, err := xdr.Unmarshal(bytes.NewReader(data), &c)
	return c, err
}
