package wire

import (
	"encoding/binary"
	"fmt"
)

// rawCodec implements the RAW data format: fixed-width elements packed back
// to back, in the local host's native byte order, with no padding between
// elements. RAW is only ever negotiated when the peer's reported native
// format and word size match ours (see negotiateDataFormat), so host byte
// order is also the peer's byte order for the life of the connection.
// Character/string fields are packed as a fixed-size, NUL-padded byte
// buffer whose length is the last dimension of the field (there is no
// length prefix; the reader already knows the field's declared size from
// GET_FIELD_TYPE).
type rawCodec struct{}

func (rawCodec) Encode(v *Value, buf []byte, use64 bool) (int, error) {
	if v.Datatype.IsString() {
		return encodeRawStrings(v, buf)
	}
	width, err := v.Datatype.nativeWidth(use64)
	if err != nil {
		return 0, err
	}
	n := v.NumElements()
	need := n * width
	if len(buf) < need {
		return 0, &ShortfallError{Shortfall: need - len(buf)}
	}
	if err := encodeRawNumeric(v, buf, use64, binary.NativeEndian); err != nil {
		return 0, err
	}
	return need, nil
}

func (rawCodec) Decode(body []byte, dt Datatype, dims []int, use64 bool) (*Value, error) {
	if dt.IsString() {
		return decodeRawStrings(body, dt, dims)
	}
	return decodeRawNumeric(body, dt, dims, use64, binary.NativeEndian)
}

func encodeRawStrings(v *Value, buf []byte) (int, error) {
	strs, err := v.Strings()
	if err != nil {
		return 0, err
	}
	width := stringFieldWidth(v.Dims)
	need := len(strs) * width
	if len(buf) < need {
		return 0, &ShortfallError{Shortfall: need - len(buf)}
	}
	for i, s := range strs {
		dst := buf[i*width : (i+1)*width]
		for j := range dst {
			dst[j] = 0
		}
		copy(dst, s)
	}
	return need, nil
}

func decodeRawStrings(body []byte, dt Datatype, dims []int) (*Value, error) {
	width := stringFieldWidth(dims)
	if width == 0 {
		width = len(body)
	}
	count := 1
	if len(dims) > 1 {
		for _, d := range dims[:len(dims)-1] {
			count *= d
		}
	}
	strs := make([]string, 0, count)
	for off := 0; off+width <= len(body) && len(strs) < count; off += width {
		strs = append(strs, cString(body[off:off+width]))
	}
	if len(dims) <= 1 {
		return newValue(dt, nil, strs), nil
	}
	return newValue(dt, dims, strs), nil
}

// stringFieldWidth returns the buffer width of one string element: the
// last dimension of a multi-dimensional string field, or the sole
// dimension for a 1-D char array. Zero means "unbounded, use all of body".
func stringFieldWidth(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	return dims[len(dims)-1]
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// encodeRawNumeric packs v's elements using order. RAW passes
// binary.NativeEndian; XDR reuses this packer to obtain natural-width
// element bytes before applying its own big-endian, 4-byte-padded layout,
// and so always passes binary.BigEndian regardless of host byte order.
func encodeRawNumeric(v *Value, buf []byte, use64 bool, order binary.ByteOrder) error {
	width, _ := v.Datatype.nativeWidth(use64)
	switch v.Datatype {
	case DatatypeChar, DatatypeUChar, DatatypeBool, DatatypeInt8, DatatypeUint8:
		bs, err := rawByteElements(v)
		if err != nil {
			return err
		}
		copy(buf, bs)
	case DatatypeShort, DatatypeUShort, DatatypeInt16, DatatypeUint16:
		u, err := v.uint64s()
		if err != nil {
			return err
		}
		for i, x := range u {
			order.PutUint16(buf[i*width:], uint16(x))
		}
	case DatatypeFloat:
		f, err := v.Float64s()
		if err != nil {
			return err
		}
		for i, x := range f {
			order.PutUint32(buf[i*width:], float32bits(float32(x)))
		}
	case DatatypeDouble:
		f, err := v.Float64s()
		if err != nil {
			return err
		}
		for i, x := range f {
			order.PutUint64(buf[i*width:], float64bits(x))
		}
	case DatatypeLong, DatatypeInt64, DatatypeInt32, DatatypeEnum:
		i64, err := v.Int64s()
		if err != nil {
			return err
		}
		for i, x := range i64 {
			putSignedWidth(buf[i*width:], x, width, order)
		}
	case DatatypeULong, DatatypeHex, DatatypeUint64, DatatypeUint32:
		u64, err := v.Uint64s()
		if err != nil {
			return err
		}
		for i, x := range u64 {
			putUnsignedWidth(buf[i*width:], x, width, order)
		}
	default:
		return fmt.Errorf("mxnet/wire: RAW encode unsupported datatype %s", v.Datatype)
	}
	return nil
}

func decodeRawNumeric(body []byte, dt Datatype, dims []int, use64 bool, order binary.ByteOrder) (*Value, error) {
	width, err := dt.nativeWidth(use64)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, d := range dims {
		n *= d
	}
	if n == 0 {
		n = len(body) / width
	}
	if n*width > len(body) {
		return nil, fmt.Errorf("mxnet/wire: RAW body too short: need %d bytes, have %d", n*width, len(body))
	}
	switch dt {
	case DatatypeChar, DatatypeUChar, DatatypeBool, DatatypeInt8, DatatypeUint8:
		return rawDecodeBytes(dt, dims, body[:n])
	case DatatypeShort, DatatypeUShort, DatatypeInt16, DatatypeUint16:
		u := make([]uint64, n)
		for i := range u {
			u[i] = uint64(order.Uint16(body[i*width:]))
		}
		return newValue(dt, dims, toDisplaySlice(dt, u)), nil
	case DatatypeFloat:
		f := make([]float64, n)
		for i := range f {
			f[i] = float64(float32frombits(order.Uint32(body[i*width:])))
		}
		return newValue(dt, dims, f), nil
	case DatatypeDouble:
		f := make([]float64, n)
		for i := range f {
			f[i] = float64frombits(order.Uint64(body[i*width:]))
		}
		return newValue(dt, dims, f), nil
	case DatatypeLong, DatatypeInt64, DatatypeInt32, DatatypeEnum:
		i64 := make([]int64, n)
		for i := range i64 {
			i64[i] = getSignedWidth(body[i*width:], width, order)
		}
		return newValue(dt, dims, i64), nil
	case DatatypeULong, DatatypeHex, DatatypeUint64, DatatypeUint32:
		u64 := make([]uint64, n)
		for i := range u64 {
			u64[i] = getUnsignedWidth(body[i*width:], width, order)
		}
		return newValue(dt, dims, u64), nil
	default:
		return nil, fmt.Errorf("mxnet/wire: RAW decode unsupported datatype %s", dt)
	}
}

func rawByteElements(v *Value) ([]byte, error) {
	switch d := v.data.(type) {
	case []bool:
		out := make([]byte, len(d))
		for i, b := range d {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	default:
		i64, err := v.int64s()
		if err != nil {
			return nil, err
		}
		out := make([]byte, len(i64))
		for i, x := range i64 {
			out[i] = byte(x)
		}
		return out, nil
	}
}

func rawDecodeBytes(dt Datatype, dims []int, body []byte) (*Value, error) {
	if dt == DatatypeBool {
		b := make([]bool, len(body))
		for i, c := range body {
			b[i] = c != 0
		}
		return newValue(dt, dims, b), nil
	}
	if dt == DatatypeInt8 {
		i64 := make([]int64, len(body))
		for i, c := range body {
			i64[i] = int64(int8(c))
		}
		return newValue(dt, dims, i64), nil
	}
	i64 := make([]int64, len(body))
	for i, c := range body {
		i64[i] = int64(c)
	}
	return newValue(dt, dims, i64), nil
}

func toDisplaySlice(dt Datatype, u []uint64) any {
	i64 := make([]int64, len(u))
	for i, x := range u {
		i64[i] = int64(x)
	}
	return i64
}

func putSignedWidth(buf []byte, v int64, width int, order binary.ByteOrder) {
	putUnsignedWidth(buf, uint64(v), width, order)
}

func putUnsignedWidth(buf []byte, v uint64, width int, order binary.ByteOrder) {
	switch width {
	case 4:
		order.PutUint32(buf, uint32(v))
	case 8:
		order.PutUint64(buf, v)
	}
}

func getSignedWidth(buf []byte, width int, order binary.ByteOrder) int64 {
	return int64(getUnsignedWidth(buf, width, order))
}

func getUnsignedWidth(buf []byte, width int, order binary.ByteOrder) uint64 {
	switch width {
	case 4:
		return uint64(order.Uint32(buf))
	case 8:
		return order.Uint64(buf)
	}
	return 0
}
