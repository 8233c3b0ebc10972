package packet

// ack is the shared shape of PUBACK, PUBREC, PUBREL and PUBCOMP: a
// packet id, and on v5 an optional reason code and properties. MQTT-5
// lets the reason code and properties be omitted entirely when the
// reason code is Success and there are no properties, to keep the
// common-case wire size at the v3.1.1 minimum.
func encodeAck(t Type, version Version, packetID uint16, rc ReasonCode, props *Properties) (Frame, error) {
	if packetID == 0 {
		return Frame{}, ErrProtocolError(t.String() + ": packet id must not be zero")
	}
	body := []byte{byte(packetID >> 8), byte(packetID)}
	if version == V500 {
		hasProps := props != nil && (len(props.UserProperties) > 0 || props.ReasonString != nil)
		if rc.Code != 0 || hasProps {
			body = append(body, rc.Code)
			if hasProps {
				propsBytes, err := EncodeProperties(t, props)
				if err != nil {
					return Frame{}, err
				}
				body = append(body, propsBytes...)
			}
		}
	}
	flags := FixedHeader{Type: t}
	return finishFrame(flags, body)
}

func decodeAck(t Type, version Version, body []byte) (packetID uint16, rc ReasonCode, props *Properties, err error) {
	if len(body) < 2 {
		return 0, ReasonCode{}, nil, ErrMalformedPacket(t.String() + ": truncated packet id")
	}
	packetID = uint16(body[0])<<8 | uint16(body[1])
	if packetID == 0 {
		return 0, ReasonCode{}, nil, ErrProtocolError(t.String() + ": packet id must not be zero")
	}
	body = body[2:]
	rc = Success
	if version == V500 && len(body) >= 1 {
		rc = ReasonCode{Code: body[0]}
		body = body[1:]
		if len(body) > 0 {
			p, n, err2 := DecodeProperties(t, body)
			if err2 != nil {
				return 0, ReasonCode{}, nil, err2
			}
			props = p
			body = body[n:]
		}
	}
	if len(body) != 0 {
		return 0, ReasonCode{}, nil, ErrMalformedPacket(t.String() + ": trailing bytes")
	}
	return packetID, rc, props, nil
}
