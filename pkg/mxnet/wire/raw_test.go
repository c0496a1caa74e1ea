package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRawDoubleRoundTrip(t *testing.T) {
	codec := rawCodec{}
	v := NewDouble(2.71828)
	buf := make([]byte, 8)
	n, err := codec.Encode(v, buf, false)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	got, err := codec.Decode(buf[:n], DatatypeDouble, nil, false)
	require.NoError(t, err)
	f, err := got.Float64()
	require.NoError(t, err)
	require.InDelta(t, 2.71828, f, 1e-9)
}

func TestRawLongWidthNegotiation(t *testing.T) {
	codec := rawCodec{}
	v := NewLong(-7)

	buf32 := make([]byte, 4)
	n, err := codec.Encode(v, buf32, false)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	buf64 := make([]byte, 8)
	n, err = codec.Encode(v, buf64, true)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	got32, err := codec.Decode(buf32, DatatypeLong, nil, false)
	require.NoError(t, err)
	i32, err := got32.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(-7), i32)

	got64, err := codec.Decode(buf64, DatatypeLong, nil, true)
	require.NoError(t, err)
	i64, err := got64.Int64()
	require.NoError(t, err)
	require.Equal(t, int64(-7), i64)
}

func TestRawStringFixedWidth(t *testing.T) {
	codec := rawCodec{}
	v := NewStringArray([]int{40}, []string{"hello"})
	buf := make([]byte, 40)
	n, err := codec.Encode(v, buf, false)
	require.NoError(t, err)
	require.Equal(t, 40, n)

	got, err := codec.Decode(buf[:n], DatatypeString, []int{40}, false)
	require.NoError(t, err)
	s, err := got.String()
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestRawShortfall(t *testing.T) {
	codec := rawCodec{}
	v := NewDoubleArray([]int{4}, []float64{1, 2, 3, 4})
	buf := make([]byte, 8)
	_, err := codec.Encode(v, buf, false)
	require.Error(t, err)
	var shortfall *ShortfallError
	require.ErrorAs(t, err, &shortfall)
	require.Equal(t, 24, shortfall.Shortfall)
}
