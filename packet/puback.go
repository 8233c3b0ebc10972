package packet

// Puback is the PUBACK packet: QoS 1 delivery acknowledgment.
type Puback struct {
	Version    Version
	PacketID   uint16
	ReasonCode ReasonCode  // v5 only; zero value (Success) on v3.1.1
	Properties *Properties // v5 only
}

func (p *Puback) PacketType() Type       { return PUBACK }
func (p *Puback) PacketVersion() Version { return p.Version }

func (p *Puback) Encode() (Frame, error) {
	return encodeAck(PUBACK, p.Version, p.PacketID, p.ReasonCode, p.Properties)
}

func DecodePuback(version Version, body []byte) (*Puback, error) {
	id, rc, props, err := decodeAck(PUBACK, version, body)
	if err != nil {
		return nil, err
	}
	return &Puback{Version: version, PacketID: id, ReasonCode: rc, Properties: props}, nil
}
