package packet

// Publish is the PUBLISH packet (spec §3.3, §4.2).
type Publish struct {
	Version    Version
	Dup        bool
	QoS        QoS
	Retain     bool
	Topic      string
	PacketID   uint16 // 0 when QoS is 0
	Payload    Payload
	Properties *Properties // v5 only
}

func (p *Publish) PacketType() Type       { return PUBLISH }
func (p *Publish) PacketVersion() Version { return p.Version }

func (p *Publish) Encode() (Frame, error) {
	if !p.QoS.Valid() {
		return Frame{}, ErrMalformedPacket("publish: qos 3")
	}
	if p.QoS == QoS0 && p.PacketID != 0 {
		return Frame{}, ErrProtocolError("publish: qos 0 must not carry a packet id")
	}
	if p.QoS != QoS0 && p.PacketID == 0 {
		return Frame{}, ErrProtocolError("publish: qos > 0 requires a non-zero packet id")
	}
	if hasWildcard(p.Topic) {
		return Frame{}, ErrMalformedPacket("publish: topic name contains a wildcard")
	}
	var body []byte
	topicBytes, err := EncodeString(p.Topic)
	if err != nil {
		return Frame{}, err
	}
	body = append(body, topicBytes...)
	if p.QoS != QoS0 {
		body = append(body, byte(p.PacketID>>8), byte(p.PacketID))
	}
	if p.Version == V500 {
		propsBytes, err := EncodeProperties(PUBLISH, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}
	body = append(body, p.Payload.Bytes()...)
	return finishFrame(FixedHeader{Type: PUBLISH, Dup: p.Dup, QoS: p.QoS, Retain: p.Retain}, body)
}

func DecodePublish(version Version, h FixedHeader, body []byte) (*Publish, error) {
	p := &Publish{Version: version, Dup: h.Dup, QoS: h.QoS, Retain: h.Retain}
	topic, n, err := DecodeString(body)
	if err != nil {
		return nil, err
	}
	if hasWildcard(topic) {
		return nil, ErrProtocolError("publish: topic name contains a wildcard")
	}
	p.Topic = topic
	body = body[n:]
	if h.QoS != QoS0 {
		if len(body) < 2 {
			return nil, ErrMalformedPacket("publish: truncated packet id")
		}
		p.PacketID = uint16(body[0])<<8 | uint16(body[1])
		if p.PacketID == 0 {
			return nil, ErrProtocolError("publish: qos > 0 requires a non-zero packet id")
		}
		body = body[2:]
	}
	if version == V500 {
		props, n, err := DecodeProperties(PUBLISH, body)
		if err != nil {
			return nil, err
		}
		for _, sid := range props.SubscriptionIdentifiers {
			if sid == 0 {
				return nil, ErrProtocolError("publish: subscription identifier zero")
			}
		}
		p.Properties = props
		body = body[n:]
	}
	p.Payload = NewPayload(body)
	return p, nil
}
