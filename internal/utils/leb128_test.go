package utils

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadULEB128(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint64
	}{
		{"zero", []byte{0x00}, 0},
		{"single byte", []byte{0x02}, 2},
		{"max single byte", []byte{0x7F}, 127},
		{"two bytes", []byte{0x80, 0x01}, 128},
		{"dwarf spec example", []byte{0xE5, 0x8E, 0x26}, 624485},
		{"max uint64", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}, 0xFFFFFFFFFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data, binary.LittleEndian)
			v, err := c.ReadULEB128()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
			assert.True(t, c.Ended())
		})
	}
}

func TestReadSLEB128(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected int64
	}{
		{"zero", []byte{0x00}, 0},
		{"two", []byte{0x02}, 2},
		{"minus two", []byte{0x7E}, -2},
		{"63", []byte{0xBF, 0x00}, 63},
		{"minus 127", []byte{0x81, 0x7F}, -127},
		{"128", []byte{0x80, 0x01}, 128},
		{"minus 128", []byte{0x80, 0x7F}, -128},
		{"dwarf spec example", []byte{0x9B, 0xF1, 0x59}, -624485},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.data, binary.LittleEndian)
			v, err := c.ReadSLEB128()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
			assert.True(t, c.Ended())
		})
	}
}

func TestLEB128Unterminated(t *testing.T) {
	// Continuation bit set on the last byte: the decoder must fail
	// instead of fabricating a value.
	data := []byte{0x80, 0x80, 0x80}

	c := NewCursor(data, binary.LittleEndian)
	_, err := c.ReadULEB128()
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	c = NewCursor(data, binary.LittleEndian)
	_, err = c.ReadSLEB128()
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestULEB128RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 624485, 1 << 20, 1<<32 - 1, 1 << 63, 0xFFFFFFFFFFFFFFFF}

	for _, v := range values {
		enc := AppendULEB128(nil, v)
		c := NewCursor(enc, binary.LittleEndian)
		dec, err := c.ReadULEB128()
		require.NoError(t, err)
		assert.Equal(t, v, dec)
		assert.True(t, c.Ended(), "encoding of %d has trailing bytes", v)
	}
}

func TestSLEB128RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 63, 64, -64, -65, 127, 128, -128, 624485, -624485, 1<<62 - 1, -(1 << 62)}

	for _, v := range values {
		enc := AppendSLEB128(nil, v)
		c := NewCursor(enc, binary.LittleEndian)
		dec, err := c.ReadSLEB128()
		require.NoError(t, err)
		assert.Equal(t, v, dec)
		assert.True(t, c.Ended(), "encoding of %d has trailing bytes", v)
	}
}

func TestLEB128MinimalEncodings(t *testing.T) {
	// Decode-then-encode reproduces the original bytes for minimal
	// encodings.
	minimal := [][]byte{
		{0x00},
		{0x7F},
		{0x80, 0x01},
		{0xE5, 0x8E, 0x26},
	}

	for _, enc := range minimal {
		c := NewCursor(enc, binary.LittleEndian)
		v, err := c.ReadULEB128()
		require.NoError(t, err)
		assert.Equal(t, enc, AppendULEB128(nil, v))
	}
}
