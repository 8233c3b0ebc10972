package packet

// Pubrel is the PUBREL packet: second half of the QoS 2 handshake. Its
// fixed header flags are hard-coded to 0b0010 by FixedHeader.flagsByte.
type Pubrel struct {
	Version    Version
	PacketID   uint16
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *Pubrel) PacketType() Type       { return PUBREL }
func (p *Pubrel) PacketVersion() Version { return p.Version }

func (p *Pubrel) Encode() (Frame, error) {
	return encodeAck(PUBREL, p.Version, p.PacketID, p.ReasonCode, p.Properties)
}

func DecodePubrel(version Version, body []byte) (*Pubrel, error) {
	id, rc, props, err := decodeAck(PUBREL, version, body)
	if err != nil {
		return nil, err
	}
	return &Pubrel{Version: version, PacketID: id, ReasonCode: rc, Properties: props}, nil
}
