package mxnet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTripCurrent(t *testing.T) {
	h := &header{
		MessageLength: 16,
		MessageType:   OpGetArrayByName | ResponseFlag,
		StatusCode:    0,
		DataType:      uint32(DatatypeDouble),
		MessageID:     42,
	}
	buf := make([]byte, HeaderLengthCurrent)
	n, err := encodeHeader(buf, h, HeaderLengthCurrent)
	require.NoError(t, err)
	require.Equal(t, HeaderLengthCurrent, n)

	got, err := decodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.MessageLength, got.MessageLength)
	require.Equal(t, h.MessageType, got.MessageType)
	require.Equal(t, h.DataType, got.DataType)
	require.Equal(t, h.MessageID, got.MessageID)
	require.True(t, got.isResponse())
	require.Equal(t, OpGetArrayByName, got.opcode())
}

func TestHeaderShortLegacyOmitsTrailingWords(t *testing.T) {
	h := &header{
		MessageLength: 8,
		MessageType:   OpGetArrayByName,
		StatusCode:    0,
	}
	buf := make([]byte, HeaderLengthLegacy)
	n, err := encodeHeader(buf, h, HeaderLengthLegacy)
	require.NoError(t, err)
	require.Equal(t, HeaderLengthLegacy, n)

	got, err := decodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(HeaderLengthLegacy), got.HeaderLength)
	require.Equal(t, uint32(0), got.DataType)
	require.Equal(t, uint32(0), got.MessageID)
}

func TestHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderLengthCurrent)
	_, err := decodeHeader(buf)
	require.Error(t, err)
}
