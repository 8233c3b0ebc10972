package mqttcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mqttkit/core/packet"
)

func frameBytes(t *testing.T, p packet.Packet) []byte {
	t.Helper()
	frame, err := p.Encode()
	require.NoError(t, err)
	var buf []byte
	for _, b := range frame.Buffers {
		buf = append(buf, b...)
	}
	return buf
}

func eventsOfKind(events []Event, kind EventKind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func u16ptr(v uint16) *uint16 { return &v }

// handshake drives a minimal CONNECT/CONNACK exchange between two
// Connections and asserts both land in StatusConnected.
func handshake(t *testing.T, client, server *Connection, connect *packet.Connect, connack *packet.Connack) {
	t.Helper()
	cEvents := client.Send(connect)
	sendReq := eventsOfKind(cEvents, EventRequestSendPacket)
	require.Len(t, sendReq, 1)
	_, _ = server.Recv(frameBytes(t, sendReq[0].Packet))

	sEvents := server.Send(connack)
	sendReq = eventsOfKind(sEvents, EventRequestSendPacket)
	require.Len(t, sendReq, 1)
	_, _ = client.Recv(frameBytes(t, sendReq[0].Packet))

	require.Equal(t, StatusConnected, client.Status())
	require.Equal(t, StatusConnected, server.Status())
}

func TestQoS2HappyPath(t *testing.T) {
	client := New(packet.RoleClient, packet.V500)
	server := New(packet.RoleServer, packet.V500)
	handshake(t, client, server,
		&packet.Connect{Version: packet.V500, ClientID: "c1", CleanStart: true},
		&packet.Connack{Version: packet.V500, ReasonCode: packet.Success})

	pub := &packet.Publish{Version: packet.V500, QoS: packet.QoS2, Topic: "a/b", Payload: packet.NewPayload([]byte("hi"))}
	sendEvents := client.Send(pub)
	sendReq := eventsOfKind(sendEvents, EventRequestSendPacket)
	require.Len(t, sendReq, 1)
	require.NotZero(t, pub.PacketID)

	srvEvents, _ := server.Recv(frameBytes(t, sendReq[0].Packet))
	require.Len(t, eventsOfKind(srvEvents, EventNotifyPacketReceived), 1)
	pubrecReq := eventsOfKind(srvEvents, EventRequestSendPacket)
	require.Len(t, pubrecReq, 1)
	pubrec, ok := pubrecReq[0].Packet.(*packet.Pubrec)
	require.True(t, ok)
	assert.Equal(t, pub.PacketID, pubrec.PacketID)

	cliEvents, _ := client.Recv(frameBytes(t, pubrec))
	pubrelReq := eventsOfKind(cliEvents, EventRequestSendPacket)
	require.Len(t, pubrelReq, 1)
	pubrel, ok := pubrelReq[0].Packet.(*packet.Pubrel)
	require.True(t, ok)

	srvEvents2, _ := server.Recv(frameBytes(t, pubrel))
	require.Len(t, eventsOfKind(srvEvents2, EventNotifyPacketReceived), 1)
	pubcompReq := eventsOfKind(srvEvents2, EventRequestSendPacket)
	require.Len(t, pubcompReq, 1)

	cliEvents2, _ := client.Recv(frameBytes(t, pubcompReq[0].Packet))
	released := eventsOfKind(cliEvents2, EventNotifyPacketIDReleased)
	require.Len(t, released, 1)
	assert.Equal(t, pub.PacketID, released[0].PacketID)
	assert.Equal(t, 0, client.inflight.Len())
}

func TestSessionResumptionReplaysInSendOrder(t *testing.T) {
	client := New(packet.RoleClient, packet.V500)
	client.Send(&packet.Connect{Version: packet.V500, ClientID: "c1", CleanStart: false})
	client.Recv(frameBytes(t, &packet.Connack{Version: packet.V500, ReasonCode: packet.Success}))
	require.Equal(t, StatusConnected, client.Status())

	pub1 := &packet.Publish{Version: packet.V500, QoS: packet.QoS1, Topic: "t1", Payload: packet.NewPayload([]byte("a"))}
	client.Send(pub1)
	pub2 := &packet.Publish{Version: packet.V500, QoS: packet.QoS2, Topic: "t2", Payload: packet.NewPayload([]byte("b"))}
	client.Send(pub2)
	require.Equal(t, 2, client.inflight.Len())

	client.NotifyClosed()
	assert.Equal(t, 2, client.inflight.Len(), "session kept: inflight must survive close")

	client.Send(&packet.Connect{Version: packet.V500, ClientID: "c1", CleanStart: false})
	events, _ := client.Recv(frameBytes(t, &packet.Connack{Version: packet.V500, SessionPresent: true, ReasonCode: packet.Success}))

	sendReqs := eventsOfKind(events, EventRequestSendPacket)
	require.Len(t, sendReqs, 2)

	first, ok := sendReqs[0].Packet.(*packet.Publish)
	require.True(t, ok)
	assert.Equal(t, pub1.PacketID, first.PacketID)
	assert.False(t, first.Dup)

	second, ok := sendReqs[1].Packet.(*packet.Publish)
	require.True(t, ok)
	assert.Equal(t, pub2.PacketID, second.PacketID)
	assert.True(t, second.Dup, "replayed QoS2 publish must carry dup=1")
}

func TestReceiveMaximumExceededOnSendIsLocalRecoveryOnly(t *testing.T) {
	client := New(packet.RoleClient, packet.V500)
	server := New(packet.RoleServer, packet.V500)
	handshake(t, client, server,
		&packet.Connect{Version: packet.V500, ClientID: "c1", CleanStart: true},
		&packet.Connack{Version: packet.V500, ReasonCode: packet.Success, Properties: &packet.Properties{ReceiveMaximum: u16ptr(1)}})

	okEvents := client.Send(&packet.Publish{Version: packet.V500, QoS: packet.QoS1, Topic: "t", Payload: packet.NewPayload(nil)})
	require.Len(t, eventsOfKind(okEvents, EventRequestSendPacket), 1)
	require.Empty(t, eventsOfKind(okEvents, EventNotifyError))

	excess := client.Send(&packet.Publish{Version: packet.V500, QoS: packet.QoS1, Topic: "t2", Payload: packet.NewPayload(nil)})
	assert.Len(t, eventsOfKind(excess, EventNotifyError), 1)
	assert.Len(t, eventsOfKind(excess, EventNotifyPacketIDReleased), 1)
	assert.Empty(t, eventsOfKind(excess, EventRequestClose), "send-side violation must not close the connection")
	assert.Empty(t, eventsOfKind(excess, EventRequestSendPacket), "rejected publish must not be sent")
}

func TestReceiveMaximumExceededOnRecvClosesConnection(t *testing.T) {
	server := New(packet.RoleServer, packet.V500, WithReceiveMaximum(1))

	pubA := &packet.Publish{Version: packet.V500, QoS: packet.QoS1, PacketID: 1, Topic: "t", Payload: packet.NewPayload(nil)}
	first, _ := server.Recv(frameBytes(t, pubA))
	require.Empty(t, eventsOfKind(first, EventNotifyError))

	pubB := &packet.Publish{Version: packet.V500, QoS: packet.QoS1, PacketID: 2, Topic: "t", Payload: packet.NewPayload(nil)}
	second, _ := server.Recv(frameBytes(t, pubB))

	require.Len(t, second, 3)
	assert.Equal(t, EventRequestSendPacket, second[0].Kind)
	disc, ok := second[0].Packet.(*packet.Disconnect)
	require.True(t, ok)
	assert.Equal(t, packet.ReceiveMaximumExceeded.Code, disc.ReasonCode.Code)
	assert.Equal(t, EventRequestClose, second[1].Kind)
	assert.Equal(t, EventNotifyError, second[2].Kind)
}

func TestQoS2DuplicateRedeliveryReAcksWithoutRenotifying(t *testing.T) {
	server := New(packet.RoleServer, packet.V500)
	pub := &packet.Publish{Version: packet.V500, QoS: packet.QoS2, PacketID: 7, Topic: "t", Payload: packet.NewPayload([]byte("x"))}

	first, _ := server.Recv(frameBytes(t, pub))
	require.Len(t, eventsOfKind(first, EventNotifyPacketReceived), 1)
	require.Len(t, eventsOfKind(first, EventRequestSendPacket), 1)

	dup := *pub
	dup.Dup = true
	second, _ := server.Recv(frameBytes(t, &dup))
	assert.Empty(t, eventsOfKind(second, EventNotifyPacketReceived), "duplicate must not be delivered to the host twice")
	require.Len(t, eventsOfKind(second, EventRequestSendPacket), 1)
}

func TestTopicAliasSendLRU(t *testing.T) {
	a := newAliasSend(5)

	require.NoError(t, a.InsertOrUpdate("topic1", 1))
	require.NoError(t, a.InsertOrUpdate("topic3", 3))

	topic, ok := a.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "topic1", topic)
	_, ok = a.Get(2)
	assert.False(t, ok)

	assert.Equal(t, uint16(2), a.GetLRUAlias())
	require.NoError(t, a.InsertOrUpdate("topic2", 2))
	assert.Equal(t, uint16(4), a.GetLRUAlias())
	require.NoError(t, a.InsertOrUpdate("topic4", 4))
	assert.Equal(t, uint16(5), a.GetLRUAlias())
	require.NoError(t, a.InsertOrUpdate("topic5", 5))

	assert.Equal(t, uint16(3), a.GetLRUAlias(), "map full: least recently used")

	require.NoError(t, a.InsertOrUpdate("topic10", 1))
	assert.Equal(t, uint16(3), a.GetLRUAlias())

	topic, ok = a.Get(3)
	assert.True(t, ok)
	assert.Equal(t, "topic3", topic)
	assert.Equal(t, uint16(2), a.GetLRUAlias(), "accessing alias 3 bumps it to MRU")

	alias, ok := a.FindByTopic("topic2")
	assert.True(t, ok)
	assert.Equal(t, uint16(2), alias)
	assert.Equal(t, uint16(2), a.GetLRUAlias(), "find_by_topic must not affect recency")

	a.Clear()
	assert.Equal(t, uint16(1), a.GetLRUAlias())
	_, ok = a.Get(1)
	assert.False(t, ok)
}
