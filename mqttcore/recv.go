package mqttcore

import (
	"errors"

	"github.com/mqttkit/core/packet"
)

// Recv feeds host-delivered bytes through the fixed-header / remaining-
// length / body framing sub-state machine (spec §4.1). It is pausable
// at any byte boundary between calls: partial frames are buffered on
// the Connection and resumed on the next Recv. It returns the Events
// produced by every complete packet found in data, and the number of
// bytes consumed. That is len(data), except when a malformed remaining
// length stops the scan: then it counts the bytes up to and including
// the offending byte, and the rest of data is not read.
func (c *Connection) Recv(data []byte) ([]Event, int) {
	var events []Event
	consumed := 0

	for consumed < len(data) {
		switch c.recvState {
		case frameAwaitingHeader:
			c.recvFixedHeaderByte = data[consumed]
			consumed++
			c.recvRemLenDecoder.Reset()
			c.recvState = frameAwaitingRemainingLength

		case frameAwaitingRemainingLength:
			done, value, err := c.recvRemLenDecoder.Feed(data[consumed])
			consumed++
			if err != nil {
				events = append(events, c.fatalDecodeError(err)...)
				c.resetFrame()
				if c.metrics != nil {
					c.metrics.BytesReceived.Add(float64(len(data)))
				}
				return events, consumed
			}
			if done {
				c.recvRemaining = value
				if value == 0 {
					events = append(events, c.dispatchPacket(nil)...)
					c.resetFrame()
				} else {
					c.recvBody = make([]byte, 0, value)
					c.recvState = frameAwaitingBody
				}
			}

		case frameAwaitingBody:
			need := int(c.recvRemaining) - len(c.recvBody)
			take := len(data) - consumed
			if take > need {
				take = need
			}
			c.recvBody = append(c.recvBody, data[consumed:consumed+take]...)
			consumed += take
			if len(c.recvBody) == int(c.recvRemaining) {
				events = append(events, c.dispatchPacket(c.recvBody)...)
				c.resetFrame()
			}
		}
	}

	if c.metrics != nil {
		c.metrics.BytesReceived.Add(float64(len(data)))
	}
	return events, consumed
}

func (c *Connection) resetFrame() {
	c.recvState = frameAwaitingHeader
	c.recvRemaining = 0
	c.recvBody = nil
}

func (c *Connection) dispatchPacket(body []byte) []Event {
	p, err := packet.Decode(c.version, c.recvFixedHeaderByte, body)
	if err != nil {
		return c.fatalDecodeError(err)
	}
	if c.metrics != nil {
		c.metrics.PacketsReceived.Inc()
	}
	events := c.handleInbound(p)
	// A server restarts its keep-alive watchdog on every inbound packet
	// (handlePingreq arms it itself), unless the packet closed the link.
	if _, isPingreq := p.(*packet.Pingreq); !isPingreq && c.role == packet.RoleServer && c.keepAlive > 0 {
		closing := false
		for _, e := range events {
			closing = closing || e.Kind == EventRequestClose
		}
		if !closing {
			events = append(events, c.armTimer(TimerPingReqRecv, pingTimeoutMillis(c.keepAlive)))
		}
	}
	return events
}

// fatalDecodeError turns a codec-layer CodecError into the
// DISCONNECT+Close+NotifyError triple spec §7 mandates for every
// MalformedPacket/ProtocolError the codec can produce.
func (c *Connection) fatalDecodeError(err error) []Event {
	reason := packet.ProtocolErrorCode
	var ce *packet.CodecError
	if errors.As(err, &ce) {
		reason = ce.Reason
	}
	return []Event{
		requestSendPacket(&packet.Disconnect{Version: c.version, ReasonCode: reason}),
		requestClose(),
		notifyError(err),
	}
}
