package packet

// Disconnect is the DISCONNECT packet. On v3.1.1 it has no variable
// header at all; on v5 the reason code and properties are both
// optional and may be omitted when the reason is Normal with no
// properties, same as the ack packet types.
type Disconnect struct {
	Version    Version
	ReasonCode ReasonCode  // v5 only
	Properties *Properties // v5 only
}

func (p *Disconnect) PacketType() Type       { return DISCONNECT }
func (p *Disconnect) PacketVersion() Version { return p.Version }

func (p *Disconnect) Encode() (Frame, error) {
	var body []byte
	if p.Version == V500 {
		hasProps := p.Properties != nil && (len(p.Properties.UserProperties) > 0 || p.Properties.ReasonString != nil ||
			p.Properties.SessionExpiryInterval != nil || p.Properties.ServerReference != nil)
		if p.ReasonCode.Code != 0 || hasProps {
			body = append(body, p.ReasonCode.Code)
			if hasProps {
				propsBytes, err := EncodeProperties(DISCONNECT, p.Properties)
				if err != nil {
					return Frame{}, err
				}
				body = append(body, propsBytes...)
			}
		}
	}
	return finishFrame(FixedHeader{Type: DISCONNECT}, body)
}

func DecodeDisconnect(version Version, body []byte) (*Disconnect, error) {
	p := &Disconnect{Version: version, ReasonCode: Success}
	if version == V500 && len(body) >= 1 {
		p.ReasonCode = ReasonCode{Code: body[0]}
		body = body[1:]
		if len(body) > 0 {
			props, n, err := DecodeProperties(DISCONNECT, body)
			if err != nil {
				return nil, err
			}
			p.Properties = props
			body = body[n:]
		}
	}
	if len(body) != 0 {
		return nil, ErrMalformedPacket("disconnect: trailing bytes")
	}
	return p, nil
}
