package mqttcore

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/mqttkit/core/packet"
)

// offlineRecord is the opaque, host-persisted encoding of one
// InflightStore entry (spec §4.8, §6.1's get_stored_packets /
// restore_packets). The host never inspects the bytes; it only stores
// them and hands them back verbatim on reconnect.
type offlineRecord struct {
	PacketID uint16 `cbor:"1,keyasint"`
	Kind     uint8  `cbor:"2,keyasint"`
	Topic    string `cbor:"3,keyasint,omitempty"`
	QoS      uint8  `cbor:"4,keyasint,omitempty"`
	Retain   bool   `cbor:"5,keyasint,omitempty"`
	Payload  []byte `cbor:"6,keyasint,omitempty"`
}

// GetStoredPackets exports every outstanding inflight entry in
// insertion order, ready for the host to persist across a reconnect.
func (c *Connection) GetStoredPackets() ([][]byte, error) {
	ids := c.inflight.OrderedIDs()
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		entry, _ := c.inflight.Get(id)
		rec := offlineRecord{PacketID: id, Kind: uint8(entry.Kind)}
		switch entry.Kind {
		case EntryPublishQoS1, EntryPublishQoS2Sent:
			rec.Topic = entry.Publish.Topic
			rec.QoS = uint8(entry.Publish.QoS)
			rec.Retain = entry.Publish.Retain
			rec.Payload = entry.Publish.Payload.Bytes()
		}
		b, err := cbor.Marshal(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// RestorePackets rebuilds the inflight store from records previously
// returned by GetStoredPackets, in the order given, and reserves each
// record's packet id against later collision. Records with an id
// already held (a caller passing duplicates) are skipped rather than
// erroring, since replay ordering matters more than strictness here.
func (c *Connection) RestorePackets(records [][]byte) error {
	for _, raw := range records {
		var rec offlineRecord
		if err := cbor.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.PacketID == 0 || c.packetIDs.isHeld(rec.PacketID) {
			continue
		}
		switch StoreEntryKind(rec.Kind) {
		case EntryPublishQoS1, EntryPublishQoS2Sent:
			pub := &packet.Publish{
				Version:  c.version,
				QoS:      packet.QoS(rec.QoS),
				Retain:   rec.Retain,
				Topic:    rec.Topic,
				PacketID: rec.PacketID,
				Payload:  packet.NewPayload(rec.Payload),
			}
			c.inflight.Put(rec.PacketID, StoreEntry{Kind: StoreEntryKind(rec.Kind), Publish: pub})
		case EntryPubrelSent:
			pubrel := &packet.Pubrel{Version: c.version, PacketID: rec.PacketID, ReasonCode: packet.Success}
			c.inflight.Put(rec.PacketID, StoreEntry{Kind: EntryPubrelSent, Pubrel: pubrel})
		default:
			continue
		}
		_ = c.packetIDs.register(rec.PacketID)
	}
	return nil
}

// RestoreQoS2PublishHandled seeds the QoS2 dedup set with ids the host
// already knows it delivered to the application before a restart, so a
// re-delivered duplicate PUBLISH is re-acked without a second
// NotifyPacketReceived (spec §6.1, §8).
func (c *Connection) RestoreQoS2PublishHandled(ids []uint16) {
	for _, id := range ids {
		c.qos2Received.Add(id)
	}
}
