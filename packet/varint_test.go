package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVarInt(t *testing.T) {
	tests := []struct {
		name     string
		input    uint32
		expected []byte
		wantErr  bool
	}{
		{"zero", 0, []byte{0x00}, false},
		{"max_single_byte", 127, []byte{0x7F}, false},
		{"min_two_byte", 128, []byte{0x80, 0x01}, false},
		{"max_two_byte", 16383, []byte{0xFF, 0x7F}, false},
		{"min_three_byte", 16384, []byte{0x80, 0x80, 0x01}, false},
		{"max_three_byte", 2097151, []byte{0xFF, 0xFF, 0x7F}, false},
		{"min_four_byte", 2097152, []byte{0x80, 0x80, 0x80, 0x01}, false},
		{"max_four_byte", 268435455, []byte{0xFF, 0xFF, 0xFF, 0x7F}, false},
		{"exceeds_maximum", 268435456, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EncodeVarInt(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
			assert.Equal(t, len(result), VarIntLen(tt.input))

			decoded, n, err := DecodeVarInt(result)
			require.NoError(t, err)
			assert.Equal(t, tt.input, decoded)
			assert.Equal(t, len(result), n)
		})
	}
}

func TestDecodeVarInt_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", []byte{}},
		{"incomplete_two_bytes", []byte{0x80}},
		{"five_bytes", []byte{0x80, 0x80, 0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeVarInt(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestVarIntDecoder_Incremental(t *testing.T) {
	encoded, err := EncodeVarInt(16384)
	require.NoError(t, err)

	var d VarIntDecoder
	var value uint32
	var done bool
	for i, b := range encoded {
		done, value, err = d.Feed(b)
		require.NoError(t, err)
		if i < len(encoded)-1 {
			assert.False(t, done)
		}
	}
	assert.True(t, done)
	assert.Equal(t, uint32(16384), value)
}

func TestVarIntDecoder_TooManyContinuationBytes(t *testing.T) {
	var d VarIntDecoder
	for i := 0; i < 3; i++ {
		done, _, err := d.Feed(0x80)
		require.NoError(t, err)
		require.False(t, done)
	}
	_, _, err := d.Feed(0x80)
	assert.Error(t, err)
}
