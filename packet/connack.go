package packet

// Connack is the CONNACK packet (spec §3.3).
type Connack struct {
	Version        Version
	SessionPresent bool
	ReasonCode     ReasonCode // ConnectReturnCode in v3.1.1
	Properties     *Properties
}

func (p *Connack) PacketType() Type       { return CONNACK }
func (p *Connack) PacketVersion() Version { return p.Version }

func (p *Connack) Encode() (Frame, error) {
	var body []byte
	var flags byte
	if p.SessionPresent {
		flags |= 1
	}
	body = append(body, flags, p.ReasonCode.Code)
	if p.Version == V500 {
		propsBytes, err := EncodeProperties(CONNACK, p.Properties)
		if err != nil {
			return Frame{}, err
		}
		body = append(body, propsBytes...)
	}
	return finishFrame(FixedHeader{Type: CONNACK}, body)
}

func DecodeConnack(version Version, body []byte) (*Connack, error) {
	if len(body) < 2 {
		return nil, ErrMalformedPacket("connack: truncated")
	}
	if body[0]&0xFE != 0 {
		return nil, ErrMalformedPacket("connack: reserved bits set")
	}
	p := &Connack{Version: version, SessionPresent: body[0]&1 != 0}
	p.ReasonCode = ReasonCode{Code: body[1]}
	body = body[2:]
	if version == V500 {
		props, n, err := DecodeProperties(CONNACK, body)
		if err != nil {
			return nil, err
		}
		p.Properties = props
		body = body[n:]
	}
	if len(body) != 0 {
		return nil, ErrMalformedPacket("connack: trailing bytes")
	}
	return p, nil
}
