package mqttcore

import "github.com/mqttkit/core/packet"

// Send runs a host-submitted packet through the outbound pipeline
// (spec §4.5): the sendability gate, packet-id/receive-max bookkeeping
// for PUBLISH, inflight-store insertion, and the PacketTooLarge check
// against the peer's announced MaximumPacketSize. It never mutates the
// packet's PacketID field except on a QoS>0 PUBLISH whose PacketID is
// still zero, in which case one is allocated and written back.
func (c *Connection) Send(p packet.Packet) []Event {
	if !packet.Sendable(c.role, c.version, p.PacketType()) || p.PacketVersion() != c.version {
		return []Event{notifyError(newDriverError(packet.KindPacketNotAllowedToSend,
			"packet not sendable for this role/version"))}
	}

	switch pkt := p.(type) {
	case *packet.Publish:
		return c.sendPublish(pkt)
	case *packet.Pubrel:
		c.inflight.Put(pkt.PacketID, StoreEntry{Kind: EntryPubrelSent, Pubrel: pkt})
	case *packet.Connect:
		c.status = StatusConnecting
		c.needStore = !pkt.CleanStart
		c.keepAlive = pkt.KeepAlive
		if pkt.Properties != nil && pkt.Properties.ReceiveMaximum != nil {
			c.recvReceiveMax.setLimit(*pkt.Properties.ReceiveMaximum)
		}
	case *packet.Connack:
		if !pkt.ReasonCode.IsError() {
			c.status = StatusConnected
		}
		if pkt.Properties != nil && pkt.Properties.ReceiveMaximum != nil {
			c.recvReceiveMax.setLimit(*pkt.Properties.ReceiveMaximum)
		}
	}

	return c.finishSend(p, 0, false)
}

func (c *Connection) sendPublish(pkt *packet.Publish) []Event {
	releaseOnFailure := pkt.QoS != packet.QoS0
	if releaseOnFailure {
		if pkt.PacketID == 0 {
			id, err := c.packetIDs.acquire()
			if err != nil {
				return []Event{notifyError(err)}
			}
			pkt.PacketID = id
		}
		if err := c.sendReceiveMax.acquire(); err != nil {
			c.packetIDs.release(pkt.PacketID)
			if c.metrics != nil {
				c.metrics.ReceiveMaximumRejections.Inc()
			}
			return []Event{notifyError(err), notifyPacketIDReleased(pkt.PacketID)}
		}
	}

	if pkt.Properties != nil && pkt.Properties.TopicAlias != nil && pkt.Topic != "" {
		if err := c.aliasSend.InsertOrUpdate(pkt.Topic, *pkt.Properties.TopicAlias); err != nil {
			if releaseOnFailure {
				c.packetIDs.release(pkt.PacketID)
				c.sendReceiveMax.release()
			}
			return []Event{notifyError(err)}
		}
	}

	if releaseOnFailure {
		kind := EntryPublishQoS1
		if pkt.QoS == packet.QoS2 {
			kind = EntryPublishQoS2Sent
		}
		c.inflight.Put(pkt.PacketID, StoreEntry{Kind: kind, Publish: pkt})
		if c.metrics != nil {
			c.metrics.InflightEntries.Set(float64(c.inflight.Len()))
		}
	}

	return c.finishSend(pkt, pkt.PacketID, releaseOnFailure)
}

// finishSend encodes p purely to measure its wire size (a sans-I/O
// driver never actually writes the bytes itself) and emits the
// RequestSendPacket event, plus whichever keep-alive timer rearms as a
// result (spec §4.9).
func (c *Connection) finishSend(p packet.Packet, id uint16, hasReleaseHint bool) []Event {
	frame, err := p.Encode()
	if err != nil {
		if hasReleaseHint {
			c.inflight.Remove(id)
			c.packetIDs.release(id)
			c.sendReceiveMax.release()
		}
		return []Event{notifyError(err)}
	}
	if c.peerMaxPacketSize != nil && uint32(frame.Size) > *c.peerMaxPacketSize {
		if hasReleaseHint {
			c.inflight.Remove(id)
			c.packetIDs.release(id)
			c.sendReceiveMax.release()
		}
		return []Event{notifyError(newDriverError(packet.KindPacketTooLarge,
			"encoded packet exceeds peer's maximum packet size"))}
	}

	if c.metrics != nil {
		c.metrics.PacketsSent.Inc()
		c.metrics.BytesSent.Add(float64(frame.Size))
	}

	ev := requestSendPacket(p)
	if hasReleaseHint {
		ev.HasReleaseHint = true
		ev.ReleasePacketIDIfSendError = id
	}
	events := []Event{ev}

	if c.role == packet.RoleClient && c.keepAlive > 0 {
		events = append(events, c.armTimer(TimerPingReqSend, keepAliveMillis(c.keepAlive)))
	}
	if _, isPingreq := p.(*packet.Pingreq); isPingreq && c.keepAlive > 0 {
		events = append(events, c.armTimer(TimerPingRespRecv, pingTimeoutMillis(c.keepAlive)))
	}
	return events
}

// NotifyTimerFired handles a host-reported timer expiry (spec §4.9).
func (c *Connection) NotifyTimerFired(kind TimerKind) []Event {
	switch kind {
	case TimerPingReqSend:
		c.pendingTimers.clear(TimerPingReqSend)
		return c.Send(&packet.Pingreq{Version: c.version})

	case TimerPingRespRecv:
		c.pendingTimers.clear(TimerPingRespRecv)
		err := newDriverError(packet.KindProtocolError, "keep alive timeout waiting for pingresp")
		return []Event{
			requestSendPacket(&packet.Disconnect{Version: c.version, ReasonCode: packet.KeepAliveTimeoutCode}),
			requestClose(),
			notifyError(err),
		}

	case TimerPingReqRecv:
		c.pendingTimers.clear(TimerPingReqRecv)
		err := newDriverError(packet.KindProtocolError, "keep alive timeout: no traffic from peer")
		return []Event{requestClose(), notifyError(err)}

	default:
		return nil
	}
}

// NotifyClosed tells the driver the transport is gone (spec §4.8):
// every pending timer is cancelled, SUBSCRIBE/UNSUBSCRIBE packet ids
// are always released, and — only when the session isn't being kept
// (CleanStart/CleanSession was set) — the inflight store, QoS2
// dedup set and remaining packet ids are cleared too.
func (c *Connection) NotifyClosed() []Event {
	var events []Event
	for kind := range c.pendingTimers {
		events = append(events, requestTimerCancel(kind))
	}
	c.pendingTimers = pendingTimers{}

	releaseOnce := func(id uint16) {
		if c.packetIDs.isHeld(id) {
			c.packetIDs.release(id)
			events = append(events, notifyPacketIDReleased(id))
		}
	}

	for id := range c.subTracker {
		releaseOnce(id)
	}
	c.subTracker = make(map[uint16]struct{})

	c.aliasSend.Clear()
	c.aliasRecv.Clear()

	if !c.needStore {
		c.inflight.Clear()
		c.qos2Received = qos2ReceivedSet{}
		for _, id := range c.packetIDs.heldIDs() {
			releaseOnce(id)
		}
	}

	c.status = StatusDisconnected
	return events
}
