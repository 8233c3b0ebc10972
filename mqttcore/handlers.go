package mqttcore

import "github.com/mqttkit/core/packet"

// handleInbound dispatches a decoded packet to its type-specific
// handler (spec §4.4). Dispatch is by packet type only: the receiving
// role is not checked here, so for example a CONNECT arriving at a
// client still goes to handleConnect. Only a packet type with no case
// below falls through to a protocol error close.
func (c *Connection) handleInbound(p packet.Packet) []Event {
	switch pkt := p.(type) {
	case *packet.Connect:
		return c.handleConnect(pkt)
	case *packet.Connack:
		return c.handleConnack(pkt)
	case *packet.Publish:
		return c.handlePublish(pkt)
	case *packet.Puback:
		return c.handlePuback(pkt)
	case *packet.Pubrec:
		return c.handlePubrec(pkt)
	case *packet.Pubrel:
		return c.handlePubrel(pkt)
	case *packet.Pubcomp:
		return c.handlePubcomp(pkt)
	case *packet.Suback:
		return c.handleSuback(pkt)
	case *packet.Unsuback:
		return c.handleUnsuback(pkt)
	case *packet.Pingreq:
		return c.handlePingreq(pkt)
	case *packet.Pingresp:
		return c.handlePingresp(pkt)
	case *packet.Disconnect:
		return c.handleDisconnect(pkt)
	case *packet.Auth:
		return []Event{notifyPacketReceived(pkt)}
	case *packet.Subscribe, *packet.Unsubscribe:
		// Routing SUBSCRIBE/UNSUBSCRIBE to a broker's subscription table
		// is outside this driver's scope; surface them unchanged.
		return []Event{notifyPacketReceived(p)}
	default:
		return c.protocolErrorClose("unhandled inbound packet type")
	}
}

func (c *Connection) handleConnect(pkt *packet.Connect) []Event {
	if c.status != StatusDisconnected {
		return c.protocolErrorClose("connect: received while not disconnected")
	}
	if pkt.Properties != nil {
		if pkt.Properties.ReceiveMaximum != nil {
			c.sendReceiveMax.setLimit(*pkt.Properties.ReceiveMaximum)
		}
		if pkt.Properties.TopicAliasMaximum != nil {
			c.aliasSend = c.newLoggedAliasSend(*pkt.Properties.TopicAliasMaximum)
		}
	}
	c.keepAlive = pkt.KeepAlive
	c.needStore = !pkt.CleanStart
	c.status = StatusConnecting
	return []Event{notifyPacketReceived(pkt)}
}

func (c *Connection) handleConnack(pkt *packet.Connack) []Event {
	if c.status != StatusConnecting {
		return c.protocolErrorClose("connack: received while not connecting")
	}
	if pkt.Properties != nil {
		if pkt.Properties.ReceiveMaximum != nil {
			c.sendReceiveMax.setLimit(*pkt.Properties.ReceiveMaximum)
		}
		if pkt.Properties.TopicAliasMaximum != nil {
			c.aliasSend = c.newLoggedAliasSend(*pkt.Properties.TopicAliasMaximum)
		}
		if pkt.Properties.MaximumPacketSize != nil {
			c.peerMaxPacketSize = pkt.Properties.MaximumPacketSize
		}
	}
	if pkt.ReasonCode.IsError() {
		c.status = StatusDisconnected
		return []Event{notifyPacketReceived(pkt)}
	}
	c.status = StatusConnected

	var events []Event
	if pkt.SessionPresent {
		events = append(events, c.replayInflight()...)
	} else {
		c.inflight.Clear()
		c.qos2Received = qos2ReceivedSet{}
		for _, id := range c.packetIDs.heldIDs() {
			c.packetIDs.release(id)
			events = append(events, notifyPacketIDReleased(id))
		}
		c.subTracker = make(map[uint16]struct{})
	}
	events = append(events, notifyPacketReceived(pkt))
	return events
}

// replayInflight resends every stored QoS1/QoS2 exchange in the order
// it was originally sent (spec §4.4, §8 session-resumption scenario).
// An entry that no longer fits the peer's MaximumPacketSize is dropped
// and its id released rather than sent truncated.
func (c *Connection) replayInflight() []Event {
	ids := c.inflight.OrderedIDs()
	c.logger.Debug("replaying inflight store", "count", len(ids))
	var events []Event
	for _, id := range ids {
		entry, _ := c.inflight.Get(id)
		var toSend packet.Packet
		switch entry.Kind {
		case EntryPublishQoS1:
			toSend = entry.Publish
		case EntryPublishQoS2Sent:
			dup := *entry.Publish
			dup.Dup = true
			dup.Payload = entry.Publish.Payload.Clone()
			toSend = &dup
		case EntryPubrelSent:
			toSend = entry.Pubrel
		}
		if c.peerMaxPacketSize != nil {
			frame, err := toSend.Encode()
			if err != nil || uint32(frame.Size) > *c.peerMaxPacketSize {
				c.logger.Debug("dropping replayed entry over peer's maximum packet size", "packet_id", id)
				c.inflight.Remove(id)
				c.packetIDs.release(id)
				events = append(events, notifyPacketIDReleased(id))
				continue
			}
		}
		events = append(events, requestSendPacket(toSend))
	}
	return events
}

func (c *Connection) handlePublish(pkt *packet.Publish) []Event {
	if pkt.Properties != nil && pkt.Properties.TopicAlias != nil {
		alias := *pkt.Properties.TopicAlias
		if pkt.Topic == "" {
			topic, ok := c.aliasRecv.Get(alias)
			if !ok {
				return c.topicAliasInvalidClose("publish: unknown topic alias")
			}
			pkt.Topic = topic
		} else if err := c.aliasRecv.Set(alias, pkt.Topic); err != nil {
			return c.topicAliasInvalidClose(err.Error())
		}
	}

	switch pkt.QoS {
	case packet.QoS0:
		return []Event{notifyPacketReceived(pkt)}

	case packet.QoS1:
		if err := c.recvReceiveMax.acquire(); err != nil {
			return c.receiveMaximumExceededClose()
		}
		events := []Event{notifyPacketReceived(pkt)}
		if c.autoPubResponse {
			events = append(events, requestSendPacket(&packet.Puback{
				Version: c.version, PacketID: pkt.PacketID, ReasonCode: packet.Success,
			}))
		}
		return events

	case packet.QoS2:
		if c.qos2Received.Has(pkt.PacketID) {
			// Re-delivery of a duplicate: re-ack, don't re-notify (spec §8).
			if c.autoPubResponse {
				return []Event{requestSendPacket(&packet.Pubrec{
					Version: c.version, PacketID: pkt.PacketID, ReasonCode: packet.Success,
				})}
			}
			return nil
		}
		if err := c.recvReceiveMax.acquire(); err != nil {
			return c.receiveMaximumExceededClose()
		}
		c.qos2Received.Add(pkt.PacketID)
		events := []Event{notifyPacketReceived(pkt)}
		if c.autoPubResponse {
			events = append(events, requestSendPacket(&packet.Pubrec{
				Version: c.version, PacketID: pkt.PacketID, ReasonCode: packet.Success,
			}))
		}
		return events

	default:
		return c.protocolErrorClose("publish: invalid qos")
	}
}

func (c *Connection) handlePuback(pkt *packet.Puback) []Event {
	if _, ok := c.inflight.Get(pkt.PacketID); !ok {
		return c.protocolErrorClose("puback: unknown packet id")
	}
	c.inflight.Remove(pkt.PacketID)
	c.packetIDs.release(pkt.PacketID)
	c.sendReceiveMax.release()
	return []Event{notifyPacketReceived(pkt), notifyPacketIDReleased(pkt.PacketID)}
}

func (c *Connection) handlePubrec(pkt *packet.Pubrec) []Event {
	if _, ok := c.inflight.Get(pkt.PacketID); !ok {
		return c.protocolErrorClose("pubrec: unknown packet id")
	}
	if pkt.ReasonCode.IsError() {
		c.inflight.Remove(pkt.PacketID)
		c.packetIDs.release(pkt.PacketID)
		c.sendReceiveMax.release()
		return []Event{notifyPacketReceived(pkt), notifyPacketIDReleased(pkt.PacketID)}
	}
	pubrel := &packet.Pubrel{Version: c.version, PacketID: pkt.PacketID, ReasonCode: packet.Success}
	c.inflight.Put(pkt.PacketID, StoreEntry{Kind: EntryPubrelSent, Pubrel: pubrel})
	return []Event{notifyPacketReceived(pkt), requestSendPacket(pubrel)}
}

func (c *Connection) handlePubrel(pkt *packet.Pubrel) []Event {
	// The recv-side ReceiveMaximum vacancy this QoS2 exchange consumed
	// is only returned here, on PUBREL, not on the PUBREC auto-ack;
	// QoS1's equivalent slot is never returned within the connection's
	// lifetime (see DESIGN.md).
	c.qos2Received.Remove(pkt.PacketID)
	c.recvReceiveMax.release()
	events := []Event{}
	if c.autoPubResponse {
		events = append(events, requestSendPacket(&packet.Pubcomp{
			Version: c.version, PacketID: pkt.PacketID, ReasonCode: packet.Success,
		}))
	}
	events = append(events, notifyPacketReceived(pkt))
	return events
}

func (c *Connection) handlePubcomp(pkt *packet.Pubcomp) []Event {
	if _, ok := c.inflight.Get(pkt.PacketID); !ok {
		return c.protocolErrorClose("pubcomp: unknown packet id")
	}
	c.inflight.Remove(pkt.PacketID)
	c.packetIDs.release(pkt.PacketID)
	c.sendReceiveMax.release()
	return []Event{notifyPacketReceived(pkt), notifyPacketIDReleased(pkt.PacketID)}
}

func (c *Connection) handleSuback(pkt *packet.Suback) []Event {
	delete(c.subTracker, pkt.PacketID)
	c.packetIDs.release(pkt.PacketID)
	return []Event{notifyPacketReceived(pkt), notifyPacketIDReleased(pkt.PacketID)}
}

func (c *Connection) handleUnsuback(pkt *packet.Unsuback) []Event {
	delete(c.subTracker, pkt.PacketID)
	c.packetIDs.release(pkt.PacketID)
	return []Event{notifyPacketReceived(pkt), notifyPacketIDReleased(pkt.PacketID)}
}

func (c *Connection) handlePingreq(pkt *packet.Pingreq) []Event {
	events := []Event{notifyPacketReceived(pkt)}
	if c.autoPingResponse {
		events = append(events, requestSendPacket(&packet.Pingresp{Version: c.version}))
	}
	if c.keepAlive > 0 {
		events = append(events, c.armTimer(TimerPingReqRecv, pingTimeoutMillis(c.keepAlive)))
	}
	return events
}

func (c *Connection) handlePingresp(pkt *packet.Pingresp) []Event {
	events := []Event{c.cancelTimer(TimerPingRespRecv)}
	events = append(events, notifyPacketReceived(pkt))
	return events
}

func (c *Connection) handleDisconnect(pkt *packet.Disconnect) []Event {
	return []Event{notifyPacketReceived(pkt), requestClose()}
}

func (c *Connection) protocolErrorClose(msg string) []Event {
	c.logger.Debug("closing: protocol error", "reason", msg)
	err := newDriverError(packet.KindProtocolError, msg)
	return []Event{
		requestSendPacket(&packet.Disconnect{Version: c.version, ReasonCode: packet.ProtocolErrorCode}),
		requestClose(),
		notifyError(err),
	}
}

func (c *Connection) topicAliasInvalidClose(msg string) []Event {
	c.logger.Debug("closing: topic alias invalid", "reason", msg)
	err := newDriverError(packet.KindTopicAliasInvalid, msg)
	return []Event{
		requestSendPacket(&packet.Disconnect{Version: c.version, ReasonCode: packet.TopicAliasInvalid}),
		requestClose(),
		notifyError(err),
	}
}

func (c *Connection) receiveMaximumExceededClose() []Event {
	c.logger.Debug("closing: receive maximum exceeded")
	if c.metrics != nil {
		c.metrics.ReceiveMaximumRejections.Inc()
	}
	err := newDriverError(packet.KindReceiveMaximumExceeded, "receive maximum exceeded")
	return []Event{
		requestSendPacket(&packet.Disconnect{Version: c.version, ReasonCode: packet.ReceiveMaximumExceeded}),
		requestClose(),
		notifyError(err),
	}
}
