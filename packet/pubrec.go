package packet

// Pubrec is the PUBREC packet: first half of the QoS 2 handshake.
type Pubrec struct {
	Version    Version
	PacketID   uint16
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *Pubrec) PacketType() Type       { return PUBREC }
func (p *Pubrec) PacketVersion() Version { return p.Version }

func (p *Pubrec) Encode() (Frame, error) {
	return encodeAck(PUBREC, p.Version, p.PacketID, p.ReasonCode, p.Properties)
}

func DecodePubrec(version Version, body []byte) (*Pubrec, error) {
	id, rc, props, err := decodeAck(PUBREC, version, body)
	if err != nil {
		return nil, err
	}
	return &Pubrec{Version: version, PacketID: id, ReasonCode: rc, Properties: props}, nil
}
