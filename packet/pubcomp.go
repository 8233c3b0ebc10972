package packet

// Pubcomp is the PUBCOMP packet: final step of the QoS 2 handshake.
type Pubcomp struct {
	Version    Version
	PacketID   uint16
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *Pubcomp) PacketType() Type       { return PUBCOMP }
func (p *Pubcomp) PacketVersion() Version { return p.Version }

func (p *Pubcomp) Encode() (Frame, error) {
	return encodeAck(PUBCOMP, p.Version, p.PacketID, p.ReasonCode, p.Properties)
}

func DecodePubcomp(version Version, body []byte) (*Pubcomp, error) {
	id, rc, props, err := decodeAck(PUBCOMP, version, body)
	if err != nil {
		return nil, err
	}
	return &Pubcomp{Version: version, PacketID: id, ReasonCode: rc, Properties: props}, nil
}
