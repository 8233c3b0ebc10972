package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeAndDecode runs a packet through Encode, concatenates the
// vectored frame, and feeds it back through the fixed-header byte plus
// Decode dispatcher, the same split every transport-facing caller uses.
func encodeAndDecode(t *testing.T, p Packet) Packet {
	t.Helper()
	frame, err := p.Encode()
	require.NoError(t, err)

	var raw []byte
	for _, b := range frame.Buffers {
		raw = append(raw, b...)
	}
	assert.Equal(t, frame.Size, len(raw))

	_, err = DecodeFixedHeaderByte(raw[0])
	require.NoError(t, err)
	remaining, n, err := DecodeVarInt(raw[1:])
	require.NoError(t, err)
	body := raw[1+n:]
	require.Len(t, body, int(remaining))

	decoded, err := Decode(p.PacketVersion(), raw[0], body)
	require.NoError(t, err)
	return decoded
}

func TestConnect_RoundTrip(t *testing.T) {
	for _, version := range []Version{V311, V500} {
		t.Run(version.String(), func(t *testing.T) {
			user := "alice"
			c := &Connect{
				Version:    version,
				ClientID:   "client-1",
				CleanStart: true,
				KeepAlive:  60,
				Username:   &user,
				Password:   []byte("secret"),
				HasPassword: true,
				Will: &Will{
					Topic:   "lwt/topic",
					Payload: NewPayload([]byte("bye")),
					QoS:     QoS1,
					Retain:  true,
				},
			}
			if version == V500 {
				sid := uint32(30)
				c.Properties = &Properties{SessionExpiryInterval: &sid}
			}
			decoded := encodeAndDecode(t, c)
			got := decoded.(*Connect)
			assert.Equal(t, c.ClientID, got.ClientID)
			assert.Equal(t, c.CleanStart, got.CleanStart)
			assert.Equal(t, c.KeepAlive, got.KeepAlive)
			assert.Equal(t, *c.Username, *got.Username)
			assert.Equal(t, c.Password, got.Password)
			require.NotNil(t, got.Will)
			assert.Equal(t, c.Will.Topic, got.Will.Topic)
			assert.True(t, c.Will.Payload.Equal(got.Will.Payload))
		})
	}
}

func TestConnack_RoundTrip(t *testing.T) {
	for _, version := range []Version{V311, V500} {
		t.Run(version.String(), func(t *testing.T) {
			c := &Connack{Version: version, SessionPresent: true, ReasonCode: Success}
			decoded := encodeAndDecode(t, c)
			got := decoded.(*Connack)
			assert.True(t, got.SessionPresent)
			assert.Equal(t, Success.Code, got.ReasonCode.Code)
		})
	}
}

func TestPublish_RoundTrip(t *testing.T) {
	for _, version := range []Version{V311, V500} {
		for _, qos := range []QoS{QoS0, QoS1, QoS2} {
			t.Run(version.String()+"/"+[]string{"qos0", "qos1", "qos2"}[qos], func(t *testing.T) {
				p := &Publish{
					Version: version,
					QoS:     qos,
					Retain:  true,
					Topic:   "a/b/c",
					Payload: NewPayload([]byte("hello world")),
				}
				if qos != QoS0 {
					p.PacketID = 42
				}
				decoded := encodeAndDecode(t, p)
				got := decoded.(*Publish)
				assert.Equal(t, p.Topic, got.Topic)
				assert.Equal(t, p.PacketID, got.PacketID)
				assert.True(t, p.Payload.Equal(got.Payload))
			})
		}
	}
}

func TestPublish_RejectsWildcardTopic(t *testing.T) {
	p := &Publish{Version: V311, Topic: "a/+/c", Payload: NewPayload(nil)}
	_, err := p.Encode()
	assert.Error(t, err)
}

func TestPublish_QoS0MustNotCarryPacketID(t *testing.T) {
	p := &Publish{Version: V311, Topic: "a", PacketID: 1, Payload: NewPayload(nil)}
	_, err := p.Encode()
	assert.Error(t, err)
}

func TestAckPackets_RoundTrip(t *testing.T) {
	t.Run("puback", func(t *testing.T) {
		p := &Puback{Version: V500, PacketID: 7, ReasonCode: Success}
		got := encodeAndDecode(t, p).(*Puback)
		assert.Equal(t, uint16(7), got.PacketID)
	})
	t.Run("pubrec", func(t *testing.T) {
		p := &Pubrec{Version: V500, PacketID: 8, ReasonCode: Success}
		got := encodeAndDecode(t, p).(*Pubrec)
		assert.Equal(t, uint16(8), got.PacketID)
	})
	t.Run("pubrel", func(t *testing.T) {
		p := &Pubrel{Version: V311, PacketID: 9}
		got := encodeAndDecode(t, p).(*Pubrel)
		assert.Equal(t, uint16(9), got.PacketID)
	})
	t.Run("pubcomp", func(t *testing.T) {
		p := &Pubcomp{Version: V311, PacketID: 10}
		got := encodeAndDecode(t, p).(*Pubcomp)
		assert.Equal(t, uint16(10), got.PacketID)
	})
}

func TestAckPackets_RejectZeroPacketID(t *testing.T) {
	p := &Puback{Version: V311, PacketID: 0}
	_, err := p.Encode()
	assert.Error(t, err)
}

func TestSubscribe_RoundTrip(t *testing.T) {
	for _, version := range []Version{V311, V500} {
		t.Run(version.String(), func(t *testing.T) {
			s := &Subscribe{
				Version:  version,
				PacketID: 5,
				Subscriptions: []Subscription{
					{Filter: "a/b", Options: SubscriptionOptions{QoS: QoS1}},
					{Filter: "c/#", Options: SubscriptionOptions{QoS: QoS2, NoLocal: true}},
				},
			}
			got := encodeAndDecode(t, s).(*Subscribe)
			require.Len(t, got.Subscriptions, 2)
			assert.Equal(t, "a/b", got.Subscriptions[0].Filter)
			assert.Equal(t, QoS2, got.Subscriptions[1].Options.QoS)
			assert.True(t, got.Subscriptions[1].Options.NoLocal)
		})
	}
}

func TestSubscribe_RejectsEmptySubscriptionList(t *testing.T) {
	s := &Subscribe{Version: V311, PacketID: 1}
	_, err := s.Encode()
	assert.Error(t, err)
}

func TestSubscribe_RejectsMidLevelHash(t *testing.T) {
	s := &Subscribe{
		Version:       V311,
		PacketID:      1,
		Subscriptions: []Subscription{{Filter: "a/#/b"}},
	}
	_, err := s.Encode()
	assert.Error(t, err)
}

func TestSuback_RoundTrip(t *testing.T) {
	s := &Suback{Version: V500, PacketID: 5, ReasonCodes: []ReasonCode{GrantedQoS1, GrantedQoS2}}
	got := encodeAndDecode(t, s).(*Suback)
	require.Len(t, got.ReasonCodes, 2)
	assert.Equal(t, GrantedQoS1.Code, got.ReasonCodes[0].Code)
}

func TestUnsubscribe_RoundTrip(t *testing.T) {
	u := &Unsubscribe{Version: V311, PacketID: 6, Filters: []string{"a/b", "c/d"}}
	got := encodeAndDecode(t, u).(*Unsubscribe)
	assert.Equal(t, []string{"a/b", "c/d"}, got.Filters)
}

func TestUnsuback_RoundTrip(t *testing.T) {
	t.Run("v311_no_reason_codes", func(t *testing.T) {
		u := &Unsuback{Version: V311, PacketID: 6}
		got := encodeAndDecode(t, u).(*Unsuback)
		assert.Equal(t, uint16(6), got.PacketID)
		assert.Empty(t, got.ReasonCodes)
	})
	t.Run("v500_reason_codes", func(t *testing.T) {
		u := &Unsuback{Version: V500, PacketID: 6, ReasonCodes: []ReasonCode{Success, NoSubscriptionExisted}}
		got := encodeAndDecode(t, u).(*Unsuback)
		require.Len(t, got.ReasonCodes, 2)
	})
}

func TestPingPackets_RoundTrip(t *testing.T) {
	req := &Pingreq{Version: V311}
	gotReq := encodeAndDecode(t, req).(*Pingreq)
	assert.Equal(t, V311, gotReq.Version)

	resp := &Pingresp{Version: V311}
	gotResp := encodeAndDecode(t, resp).(*Pingresp)
	assert.Equal(t, V311, gotResp.Version)
}

func TestDisconnect_RoundTrip(t *testing.T) {
	t.Run("v311_no_body", func(t *testing.T) {
		d := &Disconnect{Version: V311}
		got := encodeAndDecode(t, d).(*Disconnect)
		assert.Equal(t, Success.Code, got.ReasonCode.Code)
	})
	t.Run("v500_with_reason", func(t *testing.T) {
		d := &Disconnect{Version: V500, ReasonCode: ServerBusy}
		got := encodeAndDecode(t, d).(*Disconnect)
		assert.Equal(t, ServerBusy.Code, got.ReasonCode.Code)
	})
}

func TestAuth_RoundTrip(t *testing.T) {
	method := "SCRAM-SHA-1"
	a := &Auth{ReasonCode: ContinueAuthentication, Properties: &Properties{AuthenticationMethod: &method}}
	got := encodeAndDecode(t, a).(*Auth)
	assert.Equal(t, ContinueAuthentication.Code, got.ReasonCode.Code)
	require.NotNil(t, got.Properties)
	assert.Equal(t, method, *got.Properties.AuthenticationMethod)
}

func TestAuth_RejectedOnV311(t *testing.T) {
	_, err := Decode(V311, byte(AUTH)<<4, nil)
	assert.Error(t, err)
}
