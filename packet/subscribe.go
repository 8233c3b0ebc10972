package packet

// Subscription is one entry in a SUBSCRIBE packet's payload.
type Subscription struct {
	Filter  string
	Options SubscriptionOptions
}

// Subscribe is the SUBSCRIBE packet. Its fixed header flags are
// hard-coded to 0b0010 by FixedHeader.flagsByte.
type Subscribe struct {
	Version       Version
	PacketID      uint16
	Subscriptions []Subscription
	Properties    *Properties // v5 only
}

func (p *Subscribe) PacketType() Type       { return SUBSCRIBE }
func (p *Subscribe) PacketVersion() Version { return p.Version }

func (p *Subscribe) Encode() (Frame, error) {
	if p.PacketID == 0 {
		return Frame{}, ErrProtocolError("subscribe: packet id must not be zero")
	}
	if len(p.Subscriptions) == 0 {
		return Frame{}, ErrProtocolError("subscribe: must contain at least one subscription")
	}
	body := []byte{byte(p.PacketID >> 8), byte(p.PacketID)}
	if p.Version == V500 {
		propsBytes, err := EncodeProperties(SUBSCRIBE, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}
	for _, s := range p.Subscriptions {
		if !validTopicFilter(s.Filter) {
			return Frame{}, ErrMalformedPacket("subscribe: '#' must be the last topic level")
		}
		fb, err := EncodeString(s.Filter)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, fb...)
		ob, err := s.Options.Encode()
		if err != nil {
			return Frame{}, err
		}
		body = append(body, ob)
	}
	return finishFrame(FixedHeader{Type: SUBSCRIBE}, body)
}

func DecodeSubscribe(version Version, body []byte) (*Subscribe, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket("subscribe: truncated packet id")
	}
	p := &Subscribe{Version: version}
	p.PacketID = uint16(body[0])<<8 | uint16(body[1])
	if p.PacketID == 0 {
		return nil, ErrProtocolError("subscribe: packet id must not be zero")
	}
	body = body[2:]
	if version == V500 {
		props, n, err := DecodeProperties(SUBSCRIBE, body)
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
		body = body[n:]
		if !validTopicFilter(filter) {
			return nil, ErrMalformedPacket("subscribe: '#' must be the last topic level")
		}
		if len(body) < 1 {
			return nil, ErrMalformedPacket("subscribe: truncated options byte")
		}
		opts, err := DecodeSubscriptionOptions(body[0])
		if err != nil {
			return nil, err
		}
		body = body[1:]
		p.Subscriptions = append(p.Subscriptions, Subscription{Filter: filter, Options: opts})
	}
	if len(p.Subscriptions) == 0 {
		return nil, ErrProtocolError("subscribe: must contain at least one subscription")
	}
	return p, nil
}
