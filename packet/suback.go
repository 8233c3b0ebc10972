package packet

// Suback is the SUBACK packet: one reason code per SUBSCRIBE entry, in
// the same order.
type Suback struct {
	Version     Version
	PacketID    uint16
	ReasonCodes []ReasonCode
	Properties  *Properties // v5 only
}

func (p *Suback) PacketType() Type       { return SUBACK }
func (p *Suback) PacketVersion() Version { return p.Version }

func (p *Suback) Encode() (Frame, error) {
	if p.PacketID == 0 {
		return Frame{}, ErrProtocolError("suback: packet id must not be zero")
	}
	if len(p.ReasonCodes) == 0 {
		return Frame{}, ErrProtocolError("suback: must contain at least one reason code")
	}
	body := []byte{byte(p.PacketID >> 8), byte(p.PacketID)}
	if p.Version == V500 {
		propsBytes, err := EncodeProperties(SUBACK, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}
	for _, rc := range p.ReasonCodes {
		body = append(body, rc.Code)
	}
	return finishFrame(FixedHeader{Type: SUBACK}, body)
}

func DecodeSuback(version Version, body []byte) (*Suback, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket("suback: truncated packet id")
	}
	p := &Suback{Version: version}
	p.PacketID = uint16(body[0])<<8 | uint16(body[1])
	if p.PacketID == 0 {
		return nil, ErrProtocolError("suback: packet id must not be zero")
	}
	body = body[2:]
	if version == V500 {
		props, n, err := DecodeProperties(SUBACK, body)
		if err != nil {
			return nil, err
		}
		p.Properties = props
		body = body[n:]
	}
	if len(body) == 0 {
		return nil, ErrProtocolError("suback: must contain at least one reason code")
	}
	for _, b := range body {
		p.ReasonCodes = append(p.ReasonCodes, ReasonCode{Code: b})
	}
	return p, nil
}
