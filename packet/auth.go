package packet

// Auth is the AUTH packet, v5 only (extended/enhanced authentication
// exchange). Like DISCONNECT, the reason code and properties may be
// omitted when the reason is Success and there are no properties.
type Auth struct {
	ReasonCode ReasonCode
	Properties *Properties
}

func (p *Auth) PacketType() Type       { return AUTH }
func (p *Auth) PacketVersion() Version { return V500 }

func (p *Auth) Encode() (Frame, error) {
	var body []byte
	hasProps := p.Properties != nil && (len(p.Properties.UserProperties) > 0 || p.Properties.ReasonString != nil ||
		p.Properties.AuthenticationMethod != nil || p.Properties.AuthenticationDataSet)
	if p.ReasonCode.Code != 0 || hasProps {
		body = append(body, p.ReasonCode.Code)
		if hasProps {
			propsBytes, err := EncodeProperties(AUTH, p.Properties)
			if err != nil {
				return Frame{}, err
			}
			body = append(body, propsBytes...)
		}
	}
	return finishFrame(FixedHeader{Type: AUTH}, body)
}

func DecodeAuth(body []byte) (*Auth, error) {
	p := &Auth{ReasonCode: Success}
	if len(body) >= 1 {
		p.ReasonCode = ReasonCode{Code: body[0]}
		body = body[1:]
		if len(body) > 0 {
			props, n, err := DecodeProperties(AUTH, body)
			if err != nil {
				return nil, err
			}
			p.Properties = props
			body = body[n:]
		}
	}
	if len(body) != 0 {
		return nil, ErrMalformedPacket("auth: trailing bytes")
	}
	return p, nil
}
