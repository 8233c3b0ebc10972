package mqttcore

import "github.com/mqttkit/core/packet"

// EventKind identifies what the host must do with an Event (spec §6.2).
type EventKind uint8

const (
	EventRequestSendPacket EventKind = iota
	EventRequestTimerReset
	EventRequestTimerCancel
	EventRequestClose
	EventNotifyPacketReceived
	EventNotifyPacketIDReleased
	EventNotifyError
)

// TimerKind identifies one of the three keep-alive timers the driver asks
// the host to arm/cancel/fire (spec §4.9).
type TimerKind uint8

const (
	TimerPingReqSend  TimerKind = iota // client: fire keep_alive seconds after any send
	TimerPingRespRecv                  // client: fire keep_alive*1.5 seconds after PINGREQ sent
	TimerPingReqRecv                   // server: fire keep_alive*1.5 seconds after any recv
)

func (k TimerKind) String() string {
	switch k {
	case TimerPingReqSend:
		return "ping-req-send"
	case TimerPingRespRecv:
		return "ping-resp-recv"
	case TimerPingReqRecv:
		return "ping-req-recv"
	default:
		return "unknown-timer"
	}
}

// Event is one instruction the host must act on. Only the fields relevant
// to Kind are populated; the rest are zero.
type Event struct {
	Kind EventKind

	Packet                     packet.Packet
	HasReleaseHint             bool
	ReleasePacketIDIfSendError uint16

	TimerKind   TimerKind
	TimerMillis int64

	PacketID uint16

	Err error
}

func requestSendPacket(p packet.Packet) Event {
	return Event{Kind: EventRequestSendPacket, Packet: p}
}

func requestTimerReset(kind TimerKind, ms int64) Event {
	return Event{Kind: EventRequestTimerReset, TimerKind: kind, TimerMillis: ms}
}

func requestTimerCancel(kind TimerKind) Event {
	return Event{Kind: EventRequestTimerCancel, TimerKind: kind}
}

func requestClose() Event {
	return Event{Kind: EventRequestClose}
}

func notifyPacketReceived(p packet.Packet) Event {
	return Event{Kind: EventNotifyPacketReceived, Packet: p}
}

func notifyPacketIDReleased(id uint16) Event {
	return Event{Kind: EventNotifyPacketIDReleased, PacketID: id}
}

func notifyError(err error) Event {
	return Event{Kind: EventNotifyError, Err: err}
}
