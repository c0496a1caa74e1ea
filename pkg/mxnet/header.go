package mxnet

import (
	"encoding/binary"
	"fmt"
)

// MXMagic identifies the start of an MX network message.
const MXMagic uint32 = 0x4d582020 // "MX  "

// Header word lengths in bytes. The current (>= 1.5.0) header carries
// seven 32-bit words; pre-1.5.0 peers send and expect only the first
// five (no DATA_TYPE or MESSAGE_ID words).
const (
	HeaderLengthCurrent = 28
	HeaderLengthLegacy  = 20
)

// header is the C3 component: the fixed leading portion of every MX
// message, decoded and encoded in network (big-endian) byte order.
type header struct {
	Magic         uint32
	HeaderLength  uint32
	MessageLength uint32
	MessageType   uint32
	StatusCode    uint32
	DataType      uint32
	MessageID     uint32
}

// encodeHeader writes h into buf using localHeaderLength to decide
// whether to include the DATA_TYPE and MESSAGE_ID words, matching the
// rule that HEADER_LENGTH is sent as the sender's own declared size. It
// returns the number of header bytes written.
func encodeHeader(buf []byte, h *header, localHeaderLength int) (int, error) {
	if localHeaderLength != HeaderLengthCurrent && localHeaderLength != HeaderLengthLegacy {
		return 0, fmt.Errorf("mxnet: invalid header length %d", localHeaderLength)
	}
	if len(buf) < localHeaderLength {
		return 0, fmt.Errorf("mxnet: header buffer too small: need %d, have %d", localHeaderLength, len(buf))
	}
	binary.BigEndian.PutUint32(buf[0:4], MXMagic)
	binary.BigEndian.PutUint32(buf[4:8], uint32(localHeaderLength))
	binary.BigEndian.PutUint32(buf[8:12], h.MessageLength)
	binary.BigEndian.PutUint32(buf[12:16], h.MessageType)
	binary.BigEndian.PutUint32(buf[16:20], h.StatusCode)
	if localHeaderLength == HeaderLengthCurrent {
		binary.BigEndian.PutUint32(buf[20:24], h.DataType)
		binary.BigEndian.PutUint32(buf[24:28], h.MessageID)
	}
	return localHeaderLength, nil
}

// decodeHeader parses a header from buf. It trusts the HEADER_LENGTH word
// actually present in the message (not any value previously negotiated)
// to decide whether DATA_TYPE and MESSAGE_ID follow; a short (20-byte)
// header from a pre-1.5.0 peer decodes with both fields defaulting to
// zero. buf must contain the whole header its HEADER_LENGTH word
// declares; callers read the three leading words (MAGIC, HEADER_LENGTH,
// MESSAGE_LENGTH) themselves to learn how many header bytes to read
// before calling decodeHeader on the full header.
func decodeHeader(buf []byte) (*header, error) {
	if len(buf) < 12 {
		return nil, fmt.Errorf("mxnet: header too short: %d bytes", len(buf))
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != MXMagic {
		return nil, WrapError(ErrorKindCorruptDataStructure, nil, "bad magic %#x", magic)
	}
	hlen := binary.BigEndian.Uint32(buf[4:8])
	if hlen != HeaderLengthCurrent && hlen != HeaderLengthLegacy {
		return nil, WrapError(ErrorKindCorruptDataStructure, nil, "unsupported header length %d", hlen)
	}
	if len(buf) < int(hlen) {
		return nil, fmt.Errorf("mxnet: header truncated: declared %d, have %d", hlen, len(buf))
	}
	h := &header{
		Magic:         magic,
		HeaderLength:  hlen,
		MessageLength: binary.BigEndian.Uint32(buf[8:12]),
		MessageType:   binary.BigEndian.Uint32(buf[12:16]),
		StatusCode:    binary.BigEndian.Uint32(buf[16:20]),
	}
	if hlen == HeaderLengthCurrent {
		h.DataType = binary.BigEndian.Uint32(buf[20:24])
		h.MessageID = binary.BigEndian.Uint32(buf[24:28])
	}
	return h, nil
}

func (h *header) isResponse() bool { return h.MessageType&ResponseFlag != 0 }
func (h *header) opcode() uint32   { return h.MessageType &^ ResponseFlag }
