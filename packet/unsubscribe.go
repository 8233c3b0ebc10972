package packet

// Unsubscribe is the UNSUBSCRIBE packet. Its fixed header flags are
// hard-coded to 0b0010 by FixedHeader.flagsByte.
type Unsubscribe struct {
	Version    Version
	PacketID   uint16
	Filters    []string
	Properties *Properties // v5 only
}

func (p *Unsubscribe) PacketType() Type       { return UNSUBSCRIBE }
func (p *Unsubscribe) PacketVersion() Version { return p.Version }

func (p *Unsubscribe) Encode() (Frame, error) {
	if p.PacketID == 0 {
		return Frame{}, ErrProtocolError("unsubscribe: packet id must not be zero")
	}
	if len(p.Filters) == 0 {
		return Frame{}, ErrProtocolError("unsubscribe: must contain at least one filter")
	}
	body := []byte{byte(p.PacketID >> 8), byte(p.PacketID)}
	if p.Version == V500 {
		propsBytes, err := EncodeProperties(UNSUBSCRIBE, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}
	for _, f := range p.Filters {
		if !validTopicFilter(f) {
			return Frame{}, ErrMalformedPacket("unsubscribe: '#' must be the last topic level")
		}
		fb, err := EncodeString(f)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, fb...)
	}
	return finishFrame(FixedHeader{Type: UNSUBSCRIBE}, body)
}

func DecodeUnsubscribe(version Version, body []byte) (*Unsubscribe, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket("unsubscribe: truncated packet id")
	}
	p := &Unsubscribe{Version: version}
	p.PacketID = uint16(body[0])<<8 | uint16(body[1])
	if p.PacketID == 0 {
		return nil, ErrProtocolError("unsubscribe: packet id must not be zero")
	}
	body = body[2:]
	if version == V500 {
		props, n, err := DecodeProperties(UNSUBSCRIBE, body)
		if err != nil {
			return nil, err
		}
		p.Properties = props
		body = body[n:]
	}
	for len(body) > 0 {
		filter, n, err := DecodeString(body)
		if err != nil {
			return nil, err
		}
		if !validTopicFilter(filter) {
			return nil, ErrMalformedPacket("unsubscribe: '#' must be the last topic level")
		}
		p.Filters = append(p.Filters, filter)
		body = body[n:]
	}
	if len(p.Filters) == 0 {
		return nil, ErrProtocolError("unsubscribe: must contain at least one filter")
	}
	return p, nil
}
