// Package wire implements the MX network value model and the three wire
// data formats (ASCII, RAW, XDR) used to encode and decode them.
package wire

import "fmt"

// Datatype identifies the element type carried by a Value, mirroring the
// MXFT_* constants of the MX database field type system.
type Datatype uint32

const (
	DatatypeString      Datatype = 1
	DatatypeChar        Datatype = 2
	DatatypeUChar       Datatype = 3
	DatatypeShort       Datatype = 4
	DatatypeUShort      Datatype = 5
	DatatypeBool        Datatype = 6
	DatatypeEnum        Datatype = 7
	DatatypeLong        Datatype = 8
	DatatypeULong       Datatype = 9
	DatatypeFloat       Datatype = 10
	DatatypeDouble      Datatype = 11
	DatatypeHex         Datatype = 12
	DatatypeInt64       Datatype = 14
	DatatypeUint64      Datatype = 15
	DatatypeInt8        Datatype = 16
	DatatypeUint8       Datatype = 17
	DatatypeInt16       Datatype = 18
	DatatypeUint16      Datatype = 19
	DatatypeInt32       Datatype = 20
	DatatypeUint32      Datatype = 21
	DatatypeRecord      Datatype = 31
	DatatypeRecordType  Datatype = 32
	DatatypeInterface   Datatype = 33
	DatatypeRecordField Datatype = 34
)

func (d Datatype) String() string {
	switch d {
	case DatatypeString:
		return "string"
	case DatatypeChar:
		return "char"
	case DatatypeUChar:
		return "uchar"
	case DatatypeShort:
		return "short"
	case DatatypeUShort:
		return "ushort"
	case DatatypeBool:
		return "bool"
	case DatatypeEnum:
		return "enum"
	case DatatypeLong:
		return "long"
	case DatatypeULong:
		return "ulong"
	case DatatypeFloat:
		return "float"
	case DatatypeDouble:
		return "double"
	case DatatypeHex:
		return "hex"
	case DatatypeInt64:
		return "int64"
	case DatatypeUint64:
		return "uint64"
	case DatatypeInt8:
		return "int8"
	case DatatypeUint8:
		return "uint8"
	case DatatypeInt16:
		return "int16"
	case DatatypeUint16:
		return "uint16"
	case DatatypeInt32:
		return "int32"
	case DatatypeUint32:
		return "uint32"
	case DatatypeRecord:
		return "record"
	case DatatypeRecordType:
		return "record_type"
	case DatatypeInterface:
		return "interface"
	case DatatypeRecordField:
		return "record_field"
	default:
		return fmt.Sprintf("datatype(%d)", uint32(d))
	}
}

// nativeWidth returns the element width in bytes that this datatype
// occupies in the RAW and XDR formats when the connection has negotiated
// 64-bit longs (use64 true) or 32-bit longs (use64 false). LONG, ULONG and
// HEX track the server's native C "long" width; every other type has a
// fixed width.
func (d Datatype) nativeWidth(use64 bool) (int, error) {
	switch d {
	case DatatypeChar, DatatypeUChar, DatatypeBool, DatatypeInt8, DatatypeUint8:
		return 1, nil
	case DatatypeShort, DatatypeUShort, DatatypeInt16, DatatypeUint16:
		return 2, nil
	case DatatypeFloat:
		return 4, nil
	case DatatypeDouble:
		return 8, nil
	case DatatypeInt64, DatatypeUint64:
		return 8, nil
	case DatatypeInt32, DatatypeUint32, DatatypeEnum:
		return 4, nil
	case DatatypeLong, DatatypeULong, DatatypeHex:
		if use64 {
			return 8, nil
		}
		return 4, nil
	case DatatypeString, DatatypeRecord, DatatypeRecordType, DatatypeInterface, DatatypeRecordField:
		return 0, fmt.Errorf("mxnet/wire: %s has no fixed element width", d)
	default:
		return 0, fmt.Errorf("mxnet/wire: unknown datatype %d", uint32(d))
	}
}

// IsString reports whether d is carried as a NUL-terminated/length-prefixed
// character string rather than a fixed-width numeric element.
func (d Datatype) IsString() bool {
	switch d {
	case DatatypeString, DatatypeRecord, DatatypeRecordType, DatatypeInterface, DatatypeRecordField:
		return true
	default:
		return false
	}
}

// Value is a typed, dimensioned datum exchanged over the MX network
// protocol. A Value with a nil or empty Dims is a scalar; otherwise Dims
// gives the array shape in row-major (C) order, outermost dimension first.
//
// The underlying storage is always one of the typed slices returned by the
// *Slice/New* constructors below; callers should use the typed accessors
// rather than reaching into the struct directly.
type Value struct {
	Datatype Datatype
	Dims     []int
	data     any
}

// NumElements returns the product of Dims, or 1 for a scalar.
func (v *Value) NumElements() int {
	if len(v.Dims) == 0 {
		return 1
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

func newValue(dt Datatype, dims []int, data any) *Value {
	return &Value{Datatype: dt, Dims: dims, data: data}
}

// Scalar constructors.

func NewString(s string) *Value   { return newValue(DatatypeString, nil, []string{s}) }
func NewDouble(f float64) *Value  { return newValue(DatatypeDouble, nil, []float64{f}) }
func NewFloat32(f float32) *Value { return newValue(DatatypeFloat, nil, []float32{f}) }
func NewBool(b bool) *Value       { return newValue(DatatypeBool, nil, []bool{b}) }
func NewLong(i int64) *Value      { return newValue(DatatypeLong, nil, []int64{i}) }
func NewULong(u uint64) *Value    { return newValue(DatatypeULong, nil, []uint64{u}) }
func NewHex(u uint64) *Value      { return newValue(DatatypeHex, nil, []uint64{u}) }
func NewInt64(i int64) *Value     { return newValue(DatatypeInt64, nil, []int64{i}) }
func NewUint64(u uint64) *Value   { return newValue(DatatypeUint64, nil, []uint64{u}) }

// Array constructors.

func NewStringArray(dims []int, s []string) *Value  { return newValue(DatatypeString, dims, s) }
func NewDoubleArray(dims []int, f []float64) *Value { return newValue(DatatypeDouble, dims, f) }
func NewLongArray(dims []int, i []int64) *Value     { return newValue(DatatypeLong, dims, i) }
func NewULongArray(dims []int, u []uint64) *Value   { return newValue(DatatypeULong, dims, u) }

// typed accessors

func (v *Value) strings() ([]string, error) {
	s, ok := v.data.([]string)
	if !ok {
		return nil, fmt.Errorf("mxnet/wire: value holds %s, not string", v.Datatype)
	}
	return s, nil
}

func (v *Value) float64s() ([]float64, error) {
	if f, ok := v.data.([]float64); ok {
		return f, nil
	}
	if f, ok := v.data.([]float32); ok {
		out := make([]float64, len(f))
		for i, x := range f {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, fmt.Errorf("mxnet/wire: value holds %s, not a floating type", v.Datatype)
}

func (v *Value) int64s() ([]int64, error) {
	switch d := v.data.(type) {
	case []int64:
		return d, nil
	case []uint64:
		out := make([]int64, len(d))
		for i, x := range d {
			out[i] = int64(x)
		}
		return out, nil
	case []bool:
		out := make([]int64, len(d))
		for i, x := range d {
			if x {
				out[i] = 1
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("mxnet/wire: value holds %s, not an integer type", v.Datatype)
	}
}

func (v *Value) uint64s() ([]uint64, error) {
	switch d := v.data.(type) {
	case []uint64:
		return d, nil
	case []int64:
		out := make([]uint64, len(d))
		for i, x := range d {
			out[i] = uint64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("mxnet/wire: value holds %s, not an unsigned type", v.Datatype)
	}
}

// String returns the sole string element of a scalar string Value.
func (v *Value) String() (string, error) {
	s, err := v.strings()
	if err != nil {
		return "", err
	}
	if len(s) == 0 {
		return "", fmt.Errorf("mxnet/wire: empty string value")
	}
	return s[0], nil
}

// Strings returns the flattened element slice of a string-typed Value.
func (v *Value) Strings() ([]string, error) { return v.strings() }

// Float64 returns the sole element of a scalar numeric Value as float64.
func (v *Value) Float64() (float64, error) {
	f, err := v.float64s()
	if err != nil {
		return 0, err
	}
	if len(f) == 0 {
		return 0, fmt.Errorf("mxnet/wire: empty numeric value")
	}
	return f[0], nil
}

// Float64s returns the flattened element slice of a numeric Value.
func (v *Value) Float64s() ([]float64, error) { return v.float64s() }

// Int64 returns the sole element of a scalar integer Value.
func (v *Value) Int64() (int64, error) {
	i, err := v.int64s()
	if err != nil {
		return 0, err
	}
	if len(i) == 0 {
		return 0, fmt.Errorf("mxnet/wire: empty integer value")
	}
	return i[0], nil
}

// Int64s returns the flattened element slice of an integer Value.
func (v *Value) Int64s() ([]int64, error) { return v.int64s() }

// Uint64 returns the sole element of a scalar unsigned Value.
func (v *Value) Uint64() (uint64, error) {
	u, err := v.uint64s()
	if err != nil {
		return 0, err
	}
	if len(u) == 0 {
		return 0, fmt.Errorf("mxnet/wire: empty unsigned value")
	}
	return u[0], nil
}

// Uint64s returns the flattened element slice of an unsigned Value.
func (v *Value) Uint64s() ([]uint64, error) { return v.uint64s() }

// Bool returns the sole element of a scalar bool Value.
func (v *Value) Bool() (bool, error) {
	b, ok := v.data.([]bool)
	if !ok || len(b) == 0 {
		return false, fmt.Errorf("mxnet/wire: value holds %s, not bool", v.Datatype)
	}
	return b[0], nil
}
