package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_RoundTrip(t *testing.T) {
	sessionExpiry := uint32(120)
	receiveMax := uint16(50)
	p := &Properties{
		SessionExpiryInterval: &sessionExpiry,
		ReceiveMaximum:        &receiveMax,
		UserProperties:        []UserProperty{{Name: "k1", Value: "v1"}, {Name: "k2", Value: "v2"}},
	}
	encoded, err := EncodeProperties(CONNECT, p)
	require.NoError(t, err)

	decoded, n, err := DecodeProperties(CONNECT, encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	require.NotNil(t, decoded.SessionExpiryInterval)
	assert.Equal(t, sessionExpiry, *decoded.SessionExpiryInterval)
	require.NotNil(t, decoded.ReceiveMaximum)
	assert.Equal(t, receiveMax, *decoded.ReceiveMaximum)
	require.Len(t, decoded.UserProperties, 2)
	assert.Equal(t, "k1", decoded.UserProperties[0].Name)
}

func TestEncodeProperties_RejectsPropertyNotInWhitelist(t *testing.T) {
	maxQoS := uint8(1)
	p := &Properties{MaximumQoS: &maxQoS} // CONNACK-only property
	_, err := EncodeProperties(CONNECT, p)
	assert.Error(t, err)
}

func TestDecodeProperties_RejectsDuplicateSingleOccurrenceProperty(t *testing.T) {
	id := byte(PropSessionExpiryInterval)
	body := []byte{id, 0, 0, 0, 1, id, 0, 0, 0, 2}
	lenPrefix, err := EncodeVarInt(uint32(len(body)))
	require.NoError(t, err)
	buf := append(lenPrefix, body...)

	_, _, err = DecodeProperties(CONNECT, buf)
	assert.Error(t, err)
}

func TestEncodeProperties_RejectsZeroSubscriptionIdentifier(t *testing.T) {
	p := &Properties{SubscriptionIdentifiers: []uint32{0}}
	_, err := EncodeProperties(PUBLISH, p)
	assert.Error(t, err)
}

func TestEncodeProperties_NilProducesEmptyBlock(t *testing.T) {
	encoded, err := EncodeProperties(CONNECT, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, encoded)
}
