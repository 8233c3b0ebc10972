package packet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUTF8MQTT(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"ascii", "hello/world", false},
		{"nul_byte", "a\x00b", true},
		{"non_character_fdd0", string(rune(0xFDD0)), true},
		{"non_character_ffff", string(rune(0xFFFF)), true},
		{"too_long", strings.Repeat("x", 65536), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUTF8MQTT(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeDecodeString_RoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "test/topic", strings.Repeat("y", 1000)} {
		encoded, err := EncodeString(s)
		require.NoError(t, err)
		decoded, n, err := DecodeString(encoded)
		require.NoError(t, err)
		assert.Equal(t, s, decoded)
		assert.Equal(t, len(encoded), n)
	}
}

func TestEncodeDecodeBinary_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xFF, 0xFE}
	encoded, err := EncodeBinary(data)
	require.NoError(t, err)
	decoded, n, err := DecodeBinary(encoded)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.Equal(t, len(encoded), n)
}

func TestValidTopicFilter(t *testing.T) {
	tests := []struct {
		filter string
		valid  bool
	}{
		{"sport/tennis/#", true},
		{"#", true},
		{"sport/#/player", false},
		{"sport#", false},
		{"sport/tennis/+", true},
		{"sport/tennis", true},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			assert.Equal(t, tt.valid, validTopicFilter(tt.filter))
		})
	}
}
