package wire

import (
	"encoding/binary"
	"fmt"
)

// xdrCodec implements the XDR data format (RFC 4506): big-endian words,
// every element padded to a 4-byte boundary, and variable-length
// string/opaque data carried as a 4-byte length prefix followed by the
// bytes and their padding. Unlike RAW, XDR pads narrow elements (char,
// short, bool) up to 4 bytes each; unlike the reflection-driven envelope
// codec used for fixed-shape handle/option/attribute replies, arbitrary
// field arrays are encoded by hand here because their datatype and shape
// are only known at runtime from the preceding GET_FIELD_TYPE exchange.
type xdrCodec struct{}

func xdrPad(n int) int {
	if r := n % 4; r != 0 {
		return n + (4 - r)
	}
	return n
}

func (xdrCodec) Encode(v *Value, buf []byte, use64 bool) (int, error) {
	if v.Datatype.IsString() {
		return encodeXDRStrings(v, buf)
	}
	return encodeXDRNumeric(v, buf, use64)
}

func (xdrCodec) Decode(body []byte, dt Datatype, dims []int, use64 bool) (*Value, error) {
	if dt.IsString() {
		return decodeXDRStrings(body, dt, dims)
	}
	return decodeXDRNumeric(body, dt, dims, use64)
}

func encodeXDRStrings(v *Value, buf []byte) (int, error) {
	strs, err := v.Strings()
	if err != nil {
		return 0, err
	}
	scalar := len(v.Dims) == 0
	need := 0
	if !scalar {
		need += 4
	}
	for _, s := range strs {
		need += 4 + xdrPad(len(s))
	}
	if len(buf) < need {
		return 0, &ShortfallError{Shortfall: need - len(buf)}
	}
	off := 0
	if !scalar {
		binary.BigEndian.PutUint32(buf[off:], uint32(len(strs)))
		off += 4
	}
	for _, s := range strs {
		binary.BigEndian.PutUint32(buf[off:], uint32(len(s)))
		off += 4
		n := copy(buf[off:], s)
		for i := n; i < xdrPad(len(s)); i++ {
			buf[off+i] = 0
		}
		off += xdrPad(len(s))
	}
	return off, nil
}

func decodeXDRStrings(body []byte, dt Datatype, dims []int) (*Value, error) {
	scalar := len(dims) == 0
	off := 0
	count := 1
	if !scalar {
		if len(body) < 4 {
			return nil, fmt.Errorf("mxnet/wire: XDR string array truncated")
		}
		count = int(binary.BigEndian.Uint32(body))
		off += 4
	}
	strs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if off+4 > len(body) {
			return nil, fmt.Errorf("mxnet/wire: XDR string truncated")
		}
		l := int(binary.BigEndian.Uint32(body[off:]))
		off += 4
		if off+l > len(body) {
			return nil, fmt.Errorf("mxnet/wire: XDR string data truncated")
		}
		strs = append(strs, string(body[off:off+l]))
		off += xdrPad(l)
	}
	if scalar {
		return newValue(dt, nil, strs), nil
	}
	return newValue(dt, dims, strs), nil
}

func encodeXDRNumeric(v *Value, buf []byte, use64 bool) (int, error) {
	width, err := v.Datatype.nativeWidth(use64)
	if err != nil {
		return 0, err
	}
	stride := xdrPad(width)
	scalar := len(v.Dims) == 0
	n := v.NumElements()
	need := n * stride
	if !scalar {
		need += 4
	}
	if len(buf) < need {
		return 0, &ShortfallError{Shortfall: need - len(buf)}
	}
	off := 0
	if !scalar {
		binary.BigEndian.PutUint32(buf[off:], uint32(n))
		off += 4
	}
	packed := make([]byte, n*width)
	if err := encodeRawNumeric(v, packed, use64, binary.BigEndian); err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		elemOff := off + i*stride
		for j := width; j < stride; j++ {
			buf[elemOff+j] = 0
		}
		copy(buf[elemOff:elemOff+width], packed[i*width:(i+1)*width])
	}
	return off + n*stride, nil
}

func decodeXDRNumeric(body []byte, dt Datatype, dims []int, use64 bool) (*Value, error) {
	width, err := dt.nativeWidth(use64)
	if err != nil {
		return nil, err
	}
	stride := xdrPad(width)
	scalar := len(dims) == 0
	off := 0
	n := 1
	for _, d := range dims {
		n *= d
	}
	if !scalar {
		if len(body) < 4 {
			return nil, fmt.Errorf("mxnet/wire: XDR numeric array truncated")
		}
		n = int(binary.BigEndian.Uint32(body))
		off += 4
	} else if n == 0 && stride > 0 {
		n = len(body[off:]) / stride
	}
	if off+n*stride > len(body) {
		return nil, fmt.Errorf("mxnet/wire: XDR body too short: need %d bytes, have %d", off+n*stride, len(body))
	}
	packed := make([]byte, n*width)
	for i := 0; i < n; i++ {
		elemOff := off + i*stride
		copy(packed[i*width:(i+1)*width], body[elemOff:elemOff+width])
	}
	return decodeRawNumeric(packed, dt, dims, use64, binary.BigEndian)
}
