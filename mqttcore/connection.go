package mqttcore

import (
	"log/slog"

	"github.com/mqttkit/core/packet"
)

// Status is the connection's position in the CONNECT/CONNACK handshake
// (spec §3.4).
type Status uint8

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

type recvFrameState uint8

const (
	frameAwaitingHeader recvFrameState = iota
	frameAwaitingRemainingLength
	frameAwaitingBody
)

// Connection is the sans-I/O per-connection MQTT state machine (spec
// §2, §5). It owns no socket and starts no goroutines: Recv, Send,
// NotifyTimerFired and NotifyClosed are the only entry points, each
// returning the ordered Events the host must act on.
type Connection struct {
	role    packet.Role
	version packet.Version
	status  Status

	logger  *slog.Logger
	metrics *Metrics

	packetIDs    *packetIDAllocator
	inflight     *InflightStore
	qos2Received qos2ReceivedSet
	subTracker   map[uint16]struct{}

	aliasSend *aliasSend
	aliasRecv *aliasRecv

	sendReceiveMax *receiveMaxCounter
	recvReceiveMax *receiveMaxCounter

	peerMaxPacketSize *uint32

	keepAlive        uint16
	needStore        bool
	autoPubResponse  bool
	autoPingResponse bool

	pendingTimers pendingTimers

	recvState           recvFrameState
	recvFixedHeaderByte byte
	recvRemLenDecoder   packet.VarIntDecoder
	recvRemaining       uint32
	recvBody            []byte
}

// New creates a Connection for the given role (Client or Server) and
// protocol version. Both must stay fixed for the connection's lifetime;
// a version or role change means constructing a new Connection.
func New(role packet.Role, version packet.Version, opts ...Option) *Connection {
	c := &Connection{
		role:             role,
		version:          version,
		status:           StatusDisconnected,
		logger:           defaultLogger(),
		packetIDs:        newPacketIDAllocator(),
		inflight:         newInflightStore(),
		qos2Received:     qos2ReceivedSet{},
		subTracker:       make(map[uint16]struct{}),
		aliasSend:        newAliasSend(0),
		aliasRecv:        newAliasRecv(0),
		sendReceiveMax:   newReceiveMaxCounter(),
		recvReceiveMax:   newReceiveMaxCounter(),
		autoPubResponse:  true,
		autoPingResponse: true,
		pendingTimers:    pendingTimers{},
	}
	for _, o := range opts {
		o(c)
	}
	c.aliasSend.logger = c.logger
	return c
}

// newLoggedAliasSend builds a fresh send-side alias map wired to this
// Connection's logger, for the points (CONNECT/CONNACK property
// negotiation) where the peer's TopicAliasMaximum replaces the map
// wholesale.
func (c *Connection) newLoggedAliasSend(max uint16) *aliasSend {
	a := newAliasSend(max)
	a.logger = c.logger
	return a
}

func (c *Connection) Role() packet.Role       { return c.role }
func (c *Connection) Version() packet.Version { return c.version }
func (c *Connection) Status() Status          { return c.status }

// AcquirePacketID allocates a fresh packet id for a host-initiated
// SUBSCRIBE/UNSUBSCRIBE (spec §6.1); PUBLISH ids are allocated
// automatically by Send.
func (c *Connection) AcquirePacketID() (uint16, error) {
	id, err := c.packetIDs.acquire()
	if err != nil {
		return 0, err
	}
	c.subTracker[id] = struct{}{}
	return id, nil
}

// ReleasePacketID returns a packet id to the free pool without going
// through an ack packet, e.g. when the host abandons a SUBSCRIBE it
// never sent.
func (c *Connection) ReleasePacketID(id uint16) {
	delete(c.subTracker, id)
	c.packetIDs.release(id)
}

// RegisterPacketID reserves an externally-known id, used when
// restoring offline-stored packets that already carry one.
func (c *Connection) RegisterPacketID(id uint16) error {
	return c.packetIDs.register(id)
}

func (c *Connection) SetAutoPubResponse(auto bool)  { c.autoPubResponse = auto }
func (c *Connection) SetAutoPingResponse(auto bool) { c.autoPingResponse = auto }

// GetReceiveMaximumVacancyForSend reports how many more QoS>0 PUBLISH
// packets may be sent before the peer's announced ReceiveMaximum is
// exhausted. ok is false before the peer's value is known.
func (c *Connection) GetReceiveMaximumVacancyForSend() (vacancy uint16, ok bool) {
	return c.sendReceiveMax.vacancyFor()
}

func (c *Connection) AliasSendFindByTopic(topic string) (uint16, bool) {
	return c.aliasSend.FindByTopic(topic)
}

func (c *Connection) AliasSendLRUAlias() uint16 { return c.aliasSend.GetLRUAlias() }

func (c *Connection) AliasRecvGet(alias uint16) (string, bool) {
	return c.aliasRecv.Get(alias)
}

func (c *Connection) armTimer(kind TimerKind, ms int64) Event {
	c.pendingTimers.set(kind)
	return requestTimerReset(kind, ms)
}

func (c *Connection) cancelTimer(kind TimerKind) Event {
	c.pendingTimers.clear(kind)
	return requestTimerCancel(kind)
}
