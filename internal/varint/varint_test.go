package varint_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymodder/hieronymus/internal/varint"
)

func TestWriteVarIntKnownVectors(t *testing.T) {
	// wiki.vg's published VarInt reference vectors.
	cases := []struct {
		value int32
		bytes []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{2, []byte{0x02}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{25565, []byte{0xdd, 0xc7, 0x01}},
		{2097151, []byte{0xff, 0xff, 0x7f}},
		{2147483647, []byte{0xff, 0xff, 0xff, 0xff, 0x07}},
		{-1, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
		{-2147483648, []byte{0x80, 0x80, 0x80, 0x80, 0x08}},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteVarInt(&buf, c.value))
		assert.Equal(t, c.bytes, buf.Bytes(), "encoding %d", c.value)
		assert.Equal(t, len(c.bytes), varint.Size(c.value))
	}
}

func TestRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 127, 128, -128, 1 << 20, -(1 << 20), 2147483647, -2147483648}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteVarInt(&buf, v))
		got, err := varint.ReadVarInt(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.LessOrEqual(t, buf.Len(), 5)
	}
}

func TestRoundTripVarShort(t *testing.T) {
	values := []int16{0, 1, -1, 127, 128, 32767, -32768}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteVarShort(&buf, v))
		got, err := varint.ReadVarShort(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.LessOrEqual(t, buf.Len(), 3)
	}
}

func TestRoundTripVarLong(t *testing.T) {
	values := []int64{0, 1, -1, 1 << 40, -(1 << 40), 9223372036854775807, -9223372036854775808}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteVarLong(&buf, v))
		got, err := varint.ReadVarLong(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.LessOrEqual(t, buf.Len(), 10)
	}
}

func TestPrefixSafety(t *testing.T) {
	// Parsing any strict prefix of an encoding yields Incomplete, not Error.
	values := []int32{128, 2097151, 2147483647, -1}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, varint.WriteVarInt(&buf, v))
		full := buf.Bytes()
		for n := 0; n < len(full); n++ {
			_, err := varint.ReadVarInt(bytes.NewReader(full[:n]))
			assert.ErrorIs(t, err, varint.ErrIncomplete, "prefix length %d of %d for value %d", n, len(full), v)
		}
	}
}

func TestOverflow(t *testing.T) {
	// Five bytes, continuation bit set on all of them: no terminator within MAX_SIZE.
	data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
	_, err := varint.ReadVarInt(bytes.NewReader(data))
	assert.ErrorIs(t, err, varint.ErrOverflow)
}

func TestFewerBytesPermitted(t *testing.T) {
	// A single zero byte is a valid, minimal encoding.
	got, err := varint.ReadVarInt(bytes.NewReader([]byte{0x00}))
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)
}
