package mqttcore

import (
	"sort"

	"github.com/mqttkit/core/packet"
)

const maxPacketID = 65535

// packetIDAllocator implements acquire/release/register (spec §4.7,
// §6.1): a high-water mark that only climbs, backed by a free list of
// released ids so short-lived connections don't need the full 16-bit
// range before wrapping. Packet id zero is never issued.
type packetIDAllocator struct {
	highWater uint16
	free      []uint16
	held      map[uint16]bool
}

func newPacketIDAllocator() *packetIDAllocator {
	return &packetIDAllocator{held: make(map[uint16]bool)}
}

func (a *packetIDAllocator) acquire() (uint16, error) {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.held[id] = true
		return id, nil
	}
	if a.highWater >= maxPacketID {
		return 0, newDriverError(packet.KindPacketIdentifierExhausted, "packet identifier space exhausted")
	}
	a.highWater++
	a.held[a.highWater] = true
	return a.highWater, nil
}

// release returns id to the free list. Releasing an id not currently
// held is a silent no-op, since notify_closed and the ack handlers can
// both end up releasing the same id during teardown.
func (a *packetIDAllocator) release(id uint16) {
	if !a.held[id] {
		return
	}
	delete(a.held, id)
	a.free = append(a.free, id)
}

// register records id as externally reserved, e.g. replaying an
// offline-stored packet that already carries an id. It fails if the id
// is already held, per the PacketIdentifierConflict case in spec §6.1.
func (a *packetIDAllocator) register(id uint16) error {
	if id == 0 {
		return newDriverError(packet.KindPacketIdentifierConflict, "packet id must not be zero")
	}
	if a.held[id] {
		return newDriverError(packet.KindPacketIdentifierConflict, "packet id already in use")
	}
	a.held[id] = true
	if id > a.highWater {
		a.highWater = id
	}
	return nil
}

func (a *packetIDAllocator) isHeld(id uint16) bool { return a.held[id] }

// heldIDs returns a sorted snapshot, used when notify_closed or a
// session-not-resumed CONNACK must release every outstanding id.
func (a *packetIDAllocator) heldIDs() []uint16 {
	ids := make([]uint16, 0, len(a.held))
	for id := range a.held {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
