package mqttcore

import "github.com/mqttkit/core/packet"

// StoreEntryKind distinguishes the three shapes an inflight entry can
// take (spec §3.4, §4.8): a QoS1 PUBLISH awaiting PUBACK, a QoS2
// PUBLISH awaiting PUBREC, or a PUBREL already sent and awaiting
// PUBCOMP.
type StoreEntryKind uint8

const (
	EntryPublishQoS1 StoreEntryKind = iota
	EntryPublishQoS2Sent
	EntryPubrelSent
)

// StoreEntry is one row of the InflightStore.
type StoreEntry struct {
	Kind    StoreEntryKind
	Publish *packet.Publish // set for EntryPublishQoS1 / EntryPublishQoS2Sent
	Pubrel  *packet.Pubrel  // set for EntryPubrelSent
}

// InflightStore is an insertion-ordered map of packet-id to StoreEntry.
// Ordering matters: session resumption and offline-store export must
// replay entries in the order their packets were originally sent
// (spec §4.8, §8).
type InflightStore struct {
	order   []uint16
	entries map[uint16]StoreEntry
}

func newInflightStore() *InflightStore {
	return &InflightStore{entries: make(map[uint16]StoreEntry)}
}

// Put stores e under id at the end of the order. Replacing an existing
// entry (a PUBREL taking over from its PUBLISH) moves it to the end too,
// since the replacement is sent after everything already stored.
func (s *InflightStore) Put(id uint16, e StoreEntry) {
	s.Remove(id)
	s.order = append(s.order, id)
	s.entries[id] = e
}

func (s *InflightStore) Get(id uint16) (StoreEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

func (s *InflightStore) Remove(id uint16) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *InflightStore) Len() int { return len(s.entries) }

// OrderedIDs returns the packet ids in insertion order.
func (s *InflightStore) OrderedIDs() []uint16 {
	return append([]uint16(nil), s.order...)
}

func (s *InflightStore) Clear() {
	s.order = nil
	s.entries = make(map[uint16]StoreEntry)
}

// qos2ReceivedSet deduplicates inbound QoS2 PUBLISH packets between
// their first delivery and the matching PUBREL (spec §3.4, §8).
type qos2ReceivedSet map[uint16]struct{}

func (s qos2ReceivedSet) Add(id uint16)      { s[id] = struct{}{} }
func (s qos2ReceivedSet) Has(id uint16) bool { _, ok := s[id]; return ok }
func (s qos2ReceivedSet) Remove(id uint16)   { delete(s, id) }
