package mxnet

import "github.com/openmx/mxnet/pkg/mxnet/wire"

// Value and Datatype are aliases of the wire package's types: every value
// read from or written to a Server is, at the wire level, one of the
// formats wire.Codec knows how to encode, so the public API re-exports
// the same type rather than wrapping it.
type (
	Value    = wire.Value
	Datatype = wire.Datatype
)

const (
	DatatypeString      = wire.DatatypeString
	DatatypeChar        = wire.DatatypeChar
	DatatypeUChar       = wire.DatatypeUChar
	DatatypeShort       = wire.DatatypeShort
	DatatypeUShort      = wire.DatatypeUShort
	DatatypeBool        = wire.DatatypeBool
	DatatypeEnum        = wire.DatatypeEnum
	DatatypeLong        = wire.DatatypeLong
	DatatypeULong       = wire.DatatypeULong
	DatatypeFloat       = wire.DatatypeFloat
	DatatypeDouble      = wire.DatatypeDouble
	DatatypeHex         = wire.DatatypeHex
	DatatypeInt64       = wire.DatatypeInt64
	DatatypeUint64      = wire.DatatypeUint64
	DatatypeInt8        = wire.DatatypeInt8
	DatatypeUint8       = wire.DatatypeUint8
	DatatypeInt16       = wire.DatatypeInt16
	DatatypeUint16      = wire.DatatypeUint16
	DatatypeInt32       = wire.DatatypeInt32
	DatatypeUint32      = wire.DatatypeUint32
	DatatypeRecord      = wire.DatatypeRecord
	DatatypeRecordType  = wire.DatatypeRecordType
	DatatypeInterface   = wire.DatatypeInterface
	DatatypeRecordField = wire.DatatypeRecordField
)

var (
	NewString      = wire.NewString
	NewDouble      = wire.NewDouble
	NewFloat32     = wire.NewFloat32
	NewBool        = wire.NewBool
	NewLong        = wire.NewLong
	NewULong       = wire.NewULong
	NewHex         = wire.NewHex
	NewInt64       = wire.NewInt64
	NewUint64      = wire.NewUint64
	NewStringArray = wire.NewStringArray
	NewDoubleArray = wire.NewDoubleArray
	NewLongArray   = wire.NewLongArray
	NewULongArray  = wire.NewULongArray
)

// DataFormat identifies one of the three negotiated wire data formats a
// connection uses for array bodies.
type DataFormat int

const (
	FormatUnknown DataFormat = 0
	FormatASCII   DataFormat = 1
	FormatRaw     DataFormat = 2
	FormatXDR     DataFormat = 3
)

func (f DataFormat) wireFormat() wire.Format { return wire.Format(f) }

func (f DataFormat) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatRaw:
		return "raw"
	case FormatXDR:
		return "xdr"
	default:
		return "unknown"
	}
}
