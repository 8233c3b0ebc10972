package packet

// Will describes the optional CONNECT last-will-and-testament message.
type Will struct {
	Topic      string
	Payload    Payload
	QoS        QoS
	Retain     bool
	Properties *Properties // v5 only: WillDelayInterval, PayloadFormatIndicator, etc.
}

// Connect is the CONNECT packet (spec §3.3, §4.2).
type Connect struct {
	Version    Version
	ClientID   string
	CleanStart bool // CleanSession in v3.1.1
	KeepAlive  uint16
	Username   *string
	Password   []byte
	HasPassword bool
	Will       *Will
	Properties *Properties // v5 only
}

func (p *Connect) PacketType() Type       { return CONNECT }
func (p *Connect) PacketVersion() Version { return p.Version }

func (p *Connect) Encode() (Frame, error) {
	if err := ValidateUTF8MQTT(p.ClientID); err != nil {
		return Frame{}, err
	}
	if p.HasPassword && p.Username == nil && p.Version == V311 {
		return Frame{}, ErrProtocolError("password flag requires username flag")
	}
	var body []byte
	nameBytes, err := EncodeString("MQTT")
	if err != nil {
		return Frame{}, err
	}
	body = append(body, nameBytes...)
	body = append(body, byte(p.Version))

	var flags byte
	if p.CleanStart {
		flags |= 1 << 1
	}
	if p.Will != nil {
		flags |= 1 << 2
		flags |= byte(p.Will.QoS) << 3
		if p.Will.Retain {
			flags |= 1 << 5
		}
	}
	if p.Username != nil {
		flags |= 1 << 7
	}
	if p.HasPassword {
		flags |= 1 << 6
	}
	body = append(body, flags, byte(p.KeepAlive>>8), byte(p.KeepAlive))

	if p.Version == V500 {
		propsBytes, err := EncodeProperties(CONNECT, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}

	clientIDBytes, err := EncodeString(p.ClientID)
	if err != nil {
		return Frame{}, err
	}
	body = append(body, clientIDBytes...)

	if p.Will != nil {
		if p.Version == V500 {
			wp, err := EncodeProperties(PUBLISH, p.Will.Properties)
			if err != nil {
				return Frame{}, err
			}
			body = append(body, wp...)
		}
		wt, err := EncodeString(p.Will.Topic)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, wt...)
		wb, err := EncodeBinary(p.Will.Payload.Bytes())
		if err != nil {
			return Frame{}, err
		}
		body = append(body, wb...)
	}
	if p.Username != nil {
		ub, err := EncodeString(*p.Username)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, ub...)
	}
	if p.HasPassword {
		pb, err := EncodeBinary(p.Password)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, pb...)
	}
	return finishFrame(FixedHeader{Type: CONNECT}, body)
}

// DecodeConnect decodes a CONNECT packet's variable header + payload.
func DecodeConnect(body []byte) (*Connect, error) {
	name, n, err := DecodeString(body)
	if err != nil {
		return nil, err
	}
	if name != "MQTT" {
		return nil, ErrMalformedPacket("connect: protocol name must be MQTT")
	}
	body = body[n:]
	if len(body) < 1 {
		return nil, ErrMalformedPacket("connect: missing protocol version")
	}
	verByte := body[0]
	body = body[1:]
	var version Version
	switch verByte {
	case byte(V311):
		version = V311
	case byte(V500):
		version = V500
	default:
		return nil, &CodecError{Reason: UnsupportedProtoVersion, Msg: "connect: unsupported protocol version"}
	}
	if len(body) < 3 {
		return nil, ErrMalformedPacket("connect: truncated flags/keepalive")
	}
	flags := body[0]
	if flags&0x01 != 0 {
		return nil, ErrMalformedPacket("connect: reserved flag bit must be 0")
	}
	p := &Connect{Version: version}
	p.CleanStart = flags&(1<<1) != 0
	willFlag := flags&(1<<2) != 0
	willQoS := QoS((flags >> 3) & 0x03)
	willRetain := flags&(1<<5) != 0
	passwordFlag := flags&(1<<6) != 0
	usernameFlag := flags&(1<<7) != 0
	if !willFlag {
		if willQoS != 0 || willRetain {
			return nil, ErrProtocolError("connect: will flag 0 but will qos/retain set")
		}
	}
	if !willQoS.Valid() {
		return nil, ErrMalformedPacket("connect: invalid will qos")
	}
	if passwordFlag && !usernameFlag && version == V311 {
		return nil, ErrProtocolError("connect: password flag without username flag")
	}
	p.KeepAlive = uint16(body[1])<<8 | uint16(body[2])
	body = body[3:]

	if version == V500 {
		props, n, err := DecodeProperties(CONNECT, body)
		if err != nil {
			return nil, err
		}
		p.Properties = props
		body = body[n:]
	}

	clientID, n, err := DecodeString(body)
	if err != nil {
		return nil, err
	}
	p.ClientID = clientID
	body = body[n:]

	if willFlag {
		w := &Will{QoS: willQoS, Retain: willRetain}
		if version == V500 {
			wp, n, err := DecodeProperties(PUBLISH, body)
			if err != nil {
				return nil, err
			}
			w.Properties = wp
			body = body[n:]
		}
		topic, n, err := DecodeString(body)
		if err != nil {
			return nil, err
		}
		w.Topic = topic
		body = body[n:]
		payload, n, err := DecodeBinary(body)
		if err != nil {
			return nil, err
		}
		w.Payload = NewPayload(payload)
		body = body[n:]
		p.Will = w
	}
	if usernameFlag {
		u, n, err := DecodeString(body)
		if err != nil {
			return nil, err
		}
		p.Username = &u
		body = body[n:]
	}
	if passwordFlag {
		pw, n, err := DecodeBinary(body)
		if err != nil {
			return nil, err
		}
		p.Password = pw
		p.HasPassword = true
		body = body[n:]
	}
	if len(body) != 0 {
		return nil, ErrMalformedPacket("connect: trailing bytes")
	}
	return p, nil
}
