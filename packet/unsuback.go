package packet

// Unsuback is the UNSUBACK packet. On v3.1.1 it carries no reason
// codes at all (the packet id is the only content); on v5 one reason
// code per UNSUBSCRIBE filter.
type Unsuback struct {
	Version     Version
	PacketID    uint16
	ReasonCodes []ReasonCode // v5 only
	Properties  *Properties  // v5 only
}

func (p *Unsuback) PacketType() Type       { return UNSUBACK }
func (p *Unsuback) PacketVersion() Version { return p.Version }

func (p *Unsuback) Encode() (Frame, error) {
	if p.PacketID == 0 {
		return Frame{}, ErrProtocolError("unsuback: packet id must not be zero")
	}
	body := []byte{byte(p.PacketID >> 8), byte(p.PacketID)}
	if p.Version == V500 {
		if len(p.ReasonCodes) == 0 {
			return Frame{}, ErrProtocolError("unsuback: must contain at least one reason code")
		}
		propsBytes, err := EncodeProperties(UNSUBACK, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
		for _, rc := range p.ReasonCodes {
			body = append(body, rc.Code)
		}
	}
	return finishFrame(FixedHeader{Type: UNSUBACK}, body)
}

func DecodeUnsuback(version Version, body []byte) (*Unsuback, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket("unsuback: truncated packet id")
	}
	p := &Unsuback{Version: version}
	p.PacketID = uint16(body[0])<<8 | uint16(body[1])
	if p.PacketID == 0 {
		return nil, ErrProtocolError("unsuback: packet id must not be zero")
	}
	body = body[2:]
	if version == V500 {
		props, n, err := DecodeProperties(UNSUBACK, body)
		if err != nil {
			return nil, err
		}
		p.Properties = props
		body = body[n:]
		if len(body) == 0 {
			return nil, ErrProtocolError("unsuback: must contain at least one reason code")
		}
		for _, b := range body {
			p.ReasonCodes = append(p.ReasonCodes, ReasonCode{Code: b})
		}
	} else if len(body) != 0 {
		return nil, ErrMalformedPacket("unsuback: trailing bytes")
	}
	return p, nil
}
