package wire

import "fmt"

// ShortfallError is returned by Encode when the destination buffer is too
// small to hold the encoded Value. Shortfall is the number of additional
// bytes the caller must grow the buffer by before retrying; it is always
// greater than zero.
type ShortfallError struct {
	Shortfall int
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("mxnet/wire: buffer %d bytes too small", e.Shortfall)
}

// Codec converts between a Value and its on-the-wire byte representation
// for one of the three MX data formats (ASCII, RAW, XDR).
type Codec interface {
	// Encode writes v into buf starting at offset 0 and returns the number
	// of bytes written. If buf is too small, it returns a *ShortfallError
	// instead of writing a partial encoding.
	Encode(v *Value, buf []byte, use64 bool) (n int, err error)

	// Decode parses body as a Value of the given datatype and dimensions.
	Decode(body []byte, dt Datatype, dims []int, use64 bool) (*Value, error)
}

// Format identifies one of the three wire data formats, or the
// NEGOTIATE sentinel a caller passes to ask the Connection Manager to
// pick one automatically (see Server.negotiateDataFormat).
type Format int

const (
	FormatNegotiate Format = 0
	FormatASCII     Format = 1
	FormatRaw       Format = 2
	FormatXDR       Format = 3
)

func (f Format) String() string {
	switch f {
	case FormatNegotiate:
		return "NEGOTIATE"
	case FormatASCII:
		return "ASCII"
	case FormatRaw:
		return "RAW"
	case FormatXDR:
		return "XDR"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// CodecFor returns the Codec implementing the given wire format.
func CodecFor(f Format) (Codec, error) {
	switch f {
	case FormatASCII:
		return asciiCodec{}, nil
	case FormatRaw:
		return rawCodec{}, nil
	case FormatXDR:
		return xdrCodec{}, nil
	default:
		return nil, fmt.Errorf("mxnet/wire: unsupported data format %d", int(f))
	}
}
