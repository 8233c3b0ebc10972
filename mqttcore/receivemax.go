package mqttcore

import "github.com/mqttkit/core/packet"

// receiveMaxCounter tracks one direction of ReceiveMaximum flow control
// (spec §3.4, §4.4, §4.5). A Connection keeps two of these, not one:
//
//   - sendReceiveMax is bounded by the PEER's announced ReceiveMaximum
//     and limits how many of our own QoS>0 PUBLISH packets may be
//     outstanding at once. Exhausting it on send is local recovery
//     only (NotifyError + packet-id release, no disconnect) — see
//     DESIGN.md for how this was resolved against the two different
//     readings spec §4.5 and §7 seem to suggest at first glance.
//   - recvReceiveMax is bounded by OUR OWN announced ReceiveMaximum and
//     limits how many QoS>0 PUBLISH packets we admit from the peer
//     before a violation is fatal (DISCONNECT + Close + NotifyError).
//
// Before the peer's value is known (pre-CONNACK on a client, pre-CONNECT
// on a server) known is false and vacancy queries return ok=false.
type receiveMaxCounter struct {
	limit   uint16
	vacancy uint16
	known   bool
}

func newReceiveMaxCounter() *receiveMaxCounter {
	return &receiveMaxCounter{}
}

// setLimit installs a freshly negotiated ReceiveMaximum. A property
// value of 0 is invalid per the MQTT-5 spec and is normalized to the
// implicit default of 65535 rather than leaving the counter at zero
// vacancy.
func (c *receiveMaxCounter) setLimit(limit uint16) {
	if limit == 0 {
		limit = 65535
	}
	c.limit = limit
	c.vacancy = limit
	c.known = true
}

func (c *receiveMaxCounter) vacancyFor() (uint16, bool) { return c.vacancy, c.known }

func (c *receiveMaxCounter) acquire() error {
	if !c.known {
		return nil
	}
	if c.vacancy == 0 {
		return newDriverError(packet.KindReceiveMaximumExceeded, "receive maximum exceeded")
	}
	c.vacancy--
	return nil
}

func (c *receiveMaxCounter) release() {
	if c.vacancy < c.limit {
		c.vacancy++
	}
}
