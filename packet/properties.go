package packet

// PropertyID identifies one of the 27 MQTT-5 properties (spec §3.2).
type PropertyID uint8

const (
	PropPayloadFormatIndicator        PropertyID = 0x01
	PropMessageExpiryInterval         PropertyID = 0x02
	PropContentType                   PropertyID = 0x03
	PropResponseTopic                 PropertyID = 0x08
	PropCorrelationData               PropertyID = 0x09
	PropSubscriptionIdentifier        PropertyID = 0x0B
	PropSessionExpiryInterval         PropertyID = 0x11
	PropAssignedClientIdentifier      PropertyID = 0x12
	PropServerKeepAlive               PropertyID = 0x13
	PropAuthenticationMethod          PropertyID = 0x15
	PropAuthenticationData            PropertyID = 0x16
	PropRequestProblemInformation     PropertyID = 0x17
	PropWillDelayInterval              PropertyID = 0x18
	PropRequestResponseInformation    PropertyID = 0x19
	PropResponseInformation           PropertyID = 0x1A
	PropServerReference               PropertyID = 0x1C
	PropReasonString                  PropertyID = 0x1F
	PropReceiveMaximum                PropertyID = 0x21
	PropTopicAliasMaximum             PropertyID = 0x22
	PropTopicAlias                    PropertyID = 0x23
	PropMaximumQoS                    PropertyID = 0x24
	PropRetainAvailable                PropertyID = 0x25
	PropUserProperty                  PropertyID = 0x26
	PropMaximumPacketSize              PropertyID = 0x27
	PropWildcardSubscriptionAvailable PropertyID = 0x28
	PropSubscriptionIdentifierAvailable PropertyID = 0x29
	PropSharedSubscriptionAvailable    PropertyID = 0x2A
)

// wireKind is the fixed wire encoding of a property, independent of
// which packet carries it.
type wireKind uint8

const (
	wireByte wireKind = iota
	wireU16
	wireU32
	wireVarInt
	wireString
	wireStringPair
	wireBinary
)

var propertyWireKind = map[PropertyID]wireKind{
	PropPayloadFormatIndicator:          wireByte,
	PropMessageExpiryInterval:           wireU32,
	PropContentType:                     wireString,
	PropResponseTopic:                   wireString,
	PropCorrelationData:                 wireBinary,
	PropSubscriptionIdentifier:          wireVarInt,
	PropSessionExpiryInterval:           wireU32,
	PropAssignedClientIdentifier:        wireString,
	PropServerKeepAlive:                 wireU16,
	PropAuthenticationMethod:            wireString,
	PropAuthenticationData:              wireBinary,
	PropRequestProblemInformation:       wireByte,
	PropWillDelayInterval:               wireU32,
	PropRequestResponseInformation:      wireByte,
	PropResponseInformation:             wireString,
	PropServerReference:                 wireString,
	PropReasonString:                    wireString,
	PropReceiveMaximum:                  wireU16,
	PropTopicAliasMaximum:               wireU16,
	PropTopicAlias:                      wireU16,
	PropMaximumQoS:                      wireByte,
	PropRetainAvailable:                 wireByte,
	PropUserProperty:                    wireStringPair,
	PropMaximumPacketSize:               wireU32,
	PropWildcardSubscriptionAvailable:   wireByte,
	PropSubscriptionIdentifierAvailable: wireByte,
	PropSharedSubscriptionAvailable:     wireByte,
}

// UserProperty is an MQTT-5 name/value pair; the only property exempt
// from the single-occurrence rule.
type UserProperty struct {
	Name  string
	Value string
}

// Properties holds the subset of the 27 MQTT-5 properties relevant to
// whichever packet embeds it. Absent single-valued properties are nil;
// absence is distinguished from a present zero value.
type Properties struct {
	PayloadFormatIndicator          *uint8
	MessageExpiryInterval           *uint32
	ContentType                     *string
	ResponseTopic                   *string
	CorrelationData                 []byte
	CorrelationDataSet               bool
	SubscriptionIdentifiers         []uint32
	SessionExpiryInterval           *uint32
	AssignedClientIdentifier        *string
	ServerKeepAlive                 *uint16
	AuthenticationMethod            *string
	AuthenticationData              []byte
	AuthenticationDataSet            bool
	RequestProblemInformation       *uint8
	WillDelayInterval                *uint32
	RequestResponseInformation      *uint8
	ResponseInformation             *string
	ServerReference                 *string
	ReasonString                    *string
	ReceiveMaximum                  *uint16
	TopicAliasMaximum               *uint16
	TopicAlias                      *uint16
	MaximumQoS                      *uint8
	RetainAvailable                 *uint8
	UserProperties                  []UserProperty
	MaximumPacketSize                *uint32
	WildcardSubscriptionAvailable   *uint8
	SubscriptionIdentifierAvailable *uint8
	SharedSubscriptionAvailable     *uint8
}

// whitelist is the set of property ids a given packet type may carry
// (spec §3.2). The direction a PUBLISH travels is not checked: its
// SubscriptionIdentifier is accepted either way. A SubscriptionIdentifier
// of zero is rejected by EncodeProperties and DecodeProperties themselves.
var whitelist = map[Type]map[PropertyID]bool{
	CONNECT: set(PropSessionExpiryInterval, PropAuthenticationMethod, PropAuthenticationData,
		PropRequestProblemInformation, PropRequestResponseInformation, PropReceiveMaximum,
		PropTopicAliasMaximum, PropUserProperty, PropMaximumPacketSize),
	CONNACK: set(PropSessionExpiryInterval, PropAssignedClientIdentifier, PropServerKeepAlive,
		PropAuthenticationMethod, PropAuthenticationData, PropResponseInformation,
		PropServerReference, PropReasonString, PropReceiveMaximum, PropTopicAliasMaximum,
		PropMaximumQoS, PropRetainAvailable, PropUserProperty, PropMaximumPacketSize,
		PropWildcardSubscriptionAvailable, PropSubscriptionIdentifierAvailable,
		PropSharedSubscriptionAvailable),
	PUBLISH: set(PropPayloadFormatIndicator, PropMessageExpiryInterval, PropContentType,
		PropResponseTopic, PropCorrelationData, PropSubscriptionIdentifier, PropTopicAlias,
		PropUserProperty),
	PUBACK:      set(PropReasonString, PropUserProperty),
	PUBREC:      set(PropReasonString, PropUserProperty),
	PUBREL:      set(PropReasonString, PropUserProperty),
	PUBCOMP:     set(PropReasonString, PropUserProperty),
	SUBSCRIBE:   set(PropSubscriptionIdentifier, PropUserProperty),
	SUBACK:      set(PropReasonString, PropUserProperty),
	UNSUBSCRIBE: set(PropUserProperty),
	UNSUBACK:    set(PropReasonString, PropUserProperty),
	DISCONNECT: set(PropSessionExpiryInterval, PropServerReference, PropReasonString,
		PropUserProperty),
	AUTH: set(PropAuthenticationMethod, PropAuthenticationData, PropReasonString, PropUserProperty),
}

func set(ids ...PropertyID) map[PropertyID]bool {
	m := make(map[PropertyID]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// EncodeProperties serializes p against t's whitelist, returning the
// VBI-length-prefixed property block.
func EncodeProperties(t Type, p *Properties) ([]byte, error) {
	allowed := whitelist[t]
	var body []byte
	put := func(id PropertyID, b []byte) error {
		if !allowed[id] {
			return ErrProtocolError("property not allowed for " + t.String())
		}
		body = append(body, byte(id))
		body = append(body, b...)
		return nil
	}
	if p == nil {
		p = &Properties{}
	}
	if p.PayloadFormatIndicator != nil {
		if err := put(PropPayloadFormatIndicator, []byte{*p.PayloadFormatIndicator}); err != nil {
			return nil, err
		}
	}
	if p.MessageExpiryInterval != nil {
		if err := put(PropMessageExpiryInterval, encodeU32(*p.MessageExpiryInterval)); err != nil {
			return nil, err
		}
	}
	if p.ContentType != nil {
		b, err := EncodeString(*p.ContentType)
		if err != nil {
			return nil, err
		}
		if err := put(PropContentType, b); err != nil {
			return nil, err
		}
	}
	if p.ResponseTopic != nil {
		b, err := EncodeString(*p.ResponseTopic)
		if err != nil {
			return nil, err
		}
		if err := put(PropResponseTopic, b); err != nil {
			return nil, err
		}
	}
	if p.CorrelationDataSet {
		b, err := EncodeBinary(p.CorrelationData)
		if err != nil {
			return nil, err
		}
		if err := put(PropCorrelationData, b); err != nil {
			return nil, err
		}
	}
	for _, sid := range p.SubscriptionIdentifiers {
		if sid == 0 {
			return nil, ErrProtocolError("subscription identifier must not be zero")
		}
		vb, err := EncodeVarInt(sid)
		if err != nil {
			return nil, err
		}
		if err := put(PropSubscriptionIdentifier, vb); err != nil {
			return nil, err
		}
	}
	if p.SessionExpiryInterval != nil {
		if err := put(PropSessionExpiryInterval, encodeU32(*p.SessionExpiryInterval)); err != nil {
			return nil, err
		}
	}
	if p.AssignedClientIdentifier != nil {
		b, err := EncodeString(*p.AssignedClientIdentifier)
		if err != nil {
			return nil, err
		}
		if err := put(PropAssignedClientIdentifier, b); err != nil {
			return nil, err
		}
	}
	if p.ServerKeepAlive != nil {
		if err := put(PropServerKeepAlive, encodeU16(*p.ServerKeepAlive)); err != nil {
			return nil, err
		}
	}
	if p.AuthenticationMethod != nil {
		b, err := EncodeString(*p.AuthenticationMethod)
		if err != nil {
			return nil, err
		}
		if err := put(PropAuthenticationMethod, b); err != nil {
			return nil, err
		}
	}
	if p.AuthenticationDataSet {
		b, err := EncodeBinary(p.AuthenticationData)
		if err != nil {
			return nil, err
		}
		if err := put(PropAuthenticationData, b); err != nil {
			return nil, err
		}
	}
	if p.RequestProblemInformation != nil {
		if err := put(PropRequestProblemInformation, []byte{*p.RequestProblemInformation}); err != nil {
			return nil, err
		}
	}
	if p.WillDelayInterval != nil {
		if err := put(PropWillDelayInterval, encodeU32(*p.WillDelayInterval)); err != nil {
			return nil, err
		}
	}
	if p.RequestResponseInformation != nil {
		if err := put(PropRequestResponseInformation, []byte{*p.RequestResponseInformation}); err != nil {
			return nil, err
		}
	}
	if p.ResponseInformation != nil {
		b, err := EncodeString(*p.ResponseInformation)
		if err != nil {
			return nil, err
		}
		if err := put(PropResponseInformation, b); err != nil {
			return nil, err
		}
	}
	if p.ServerReference != nil {
		b, err := EncodeString(*p.ServerReference)
		if err != nil {
			return nil, err
		}
		if err := put(PropServerReference, b); err != nil {
			return nil, err
		}
	}
	if p.ReasonString != nil {
		b, err := EncodeString(*p.ReasonString)
		if err != nil {
			return nil, err
		}
		if err := put(PropReasonString, b); err != nil {
			return nil, err
		}
	}
	if p.ReceiveMaximum != nil {
		if err := put(PropReceiveMaximum, encodeU16(*p.ReceiveMaximum)); err != nil {
			return nil, err
		}
	}
	if p.TopicAliasMaximum != nil {
		if err := put(PropTopicAliasMaximum, encodeU16(*p.TopicAliasMaximum)); err != nil {
			return nil, err
		}
	}
	if p.TopicAlias != nil {
		if err := put(PropTopicAlias, encodeU16(*p.TopicAlias)); err != nil {
			return nil, err
		}
	}
	if p.MaximumQoS != nil {
		if err := put(PropMaximumQoS, []byte{*p.MaximumQoS}); err != nil {
			return nil, err
		}
	}
	if p.RetainAvailable != nil {
		if err := put(PropRetainAvailable, []byte{*p.RetainAvailable}); err != nil {
			return nil, err
		}
	}
	if p.MaximumPacketSize != nil {
		if err := put(PropMaximumPacketSize, encodeU32(*p.MaximumPacketSize)); err != nil {
			return nil, err
		}
	}
	if p.WildcardSubscriptionAvailable != nil {
		if err := put(PropWildcardSubscriptionAvailable, []byte{*p.WildcardSubscriptionAvailable}); err != nil {
			return nil, err
		}
	}
	if p.SubscriptionIdentifierAvailable != nil {
		if err := put(PropSubscriptionIdentifierAvailable, []byte{*p.SubscriptionIdentifierAvailable}); err != nil {
			return nil, err
		}
	}
	if p.SharedSubscriptionAvailable != nil {
		if err := put(PropSharedSubscriptionAvailable, []byte{*p.SharedSubscriptionAvailable}); err != nil {
			return nil, err
		}
	}
	for _, up := range p.UserProperties {
		nb, err := EncodeString(up.Name)
		if err != nil {
			return nil, err
		}
		vb, err := EncodeString(up.Value)
		if err != nil {
			return nil, err
		}
		if err := put(PropUserProperty, append(nb, vb...)); err != nil {
			return nil, err
		}
	}
	lenPrefix, err := EncodeVarInt(uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(lenPrefix, body...), nil
}

// DecodeProperties reads a VBI-length-prefixed property block from the
// start of b, enforcing t's whitelist and single-occurrence rules. It
// returns the decoded properties and the total bytes consumed
// (length prefix + block).
func DecodeProperties(t Type, b []byte) (*Properties, int, error) {
	length, n, err := DecodeVarInt(b)
	if err != nil {
		return nil, 0, err
	}
	total := n + int(length)
	if len(b) < total {
		return nil, 0, ErrMalformedPacket("properties: truncated block")
	}
	body := b[n:total]
	allowed := whitelist[t]
	seen := map[PropertyID]bool{}
	p := &Properties{}

	requireOnce := func(id PropertyID) error {
		if !allowed[id] {
			return ErrProtocolError("property not allowed for " + t.String())
		}
		if id != PropUserProperty && seen[id] {
			return ErrProtocolError("duplicate property")
		}
		seen[id] = true
		return nil
	}

	for len(body) > 0 {
		id := PropertyID(body[0])
		body = body[1:]
		if err := requireOnce(id); err != nil {
			return nil, 0, err
		}
		kind, known := propertyWireKind[id]
		if !known {
			return nil, 0, ErrMalformedPacket("unknown property id")
		}
		var consumed int
		switch kind {
		case wireByte:
			if len(body) < 1 {
				return nil, 0, ErrMalformedPacket("property: truncated byte")
			}
			v := body[0]
			consumed = 1
			assignByte(p, id, v)
		case wireU16:
			v, err := decodeU16(body)
			if err != nil {
				return nil, 0, err
			}
			consumed = 2
			assignU16(p, id, v)
		case wireU32:
			v, err := decodeU32(body)
			if err != nil {
				return nil, 0, err
			}
			consumed = 4
			assignU32(p, id, v)
		case wireVarInt:
			v, n, err := DecodeVarInt(body)
			if err != nil {
				return nil, 0, err
			}
			if v == 0 && id == PropSubscriptionIdentifier {
				return nil, 0, ErrProtocolError("subscription identifier zero")
			}
			consumed = n
			p.SubscriptionIdentifiers = append(p.SubscriptionIdentifiers, v)
		case wireString:
			s, n, err := DecodeString(body)
			if err != nil {
				return nil, 0, err
			}
			consumed = n
			assignString(p, id, s)
		case wireBinary:
			data, n, err := DecodeBinary(body)
			if err != nil {
				return nil, 0, err
			}
			consumed = n
			assignBinary(p, id, data)
		case wireStringPair:
			name, n1, err := DecodeString(body)
			if err != nil {
				return nil, 0, err
			}
			value, n2, err := DecodeString(body[n1:])
			if err != nil {
				return nil, 0, err
			}
			consumed = n1 + n2
			p.UserProperties = append(p.UserProperties, UserProperty{Name: name, Value: value})
		}
		body = body[consumed:]
	}
	return p, total, nil
}

func assignByte(p *Properties, id PropertyID, v uint8) {
	switch id {
	case PropPayloadFormatIndicator:
		p.PayloadFormatIndicator = &v
	case PropRequestProblemInformation:
		p.RequestProblemInformation = &v
	case PropRequestResponseInformation:
		p.RequestResponseInformation = &v
	case PropMaximumQoS:
		p.MaximumQoS = &v
	case PropRetainAvailable:
		p.RetainAvailable = &v
	case PropWildcardSubscriptionAvailable:
		p.WildcardSubscriptionAvailable = &v
	case PropSubscriptionIdentifierAvailable:
		p.SubscriptionIdentifierAvailable = &v
	case PropSharedSubscriptionAvailable:
		p.SharedSubscriptionAvailable = &v
	}
}

func assignU16(p *Properties, id PropertyID, v uint16) {
	switch id {
	case PropServerKeepAlive:
		p.ServerKeepAlive = &v
	case PropReceiveMaximum:
		p.ReceiveMaximum = &v
	case PropTopicAliasMaximum:
		p.TopicAliasMaximum = &v
	case PropTopicAlias:
		p.TopicAlias = &v
	}
}

func assignU32(p *Properties, id PropertyID, v uint32) {
	switch id {
	case PropMessageExpiryInterval:
		p.MessageExpiryInterval = &v
	case PropSessionExpiryInterval:
		p.SessionExpiryInterval = &v
	case PropWillDelayInterval:
		p.WillDelayInterval = &v
	case PropMaximumPacketSize:
		p.MaximumPacketSize = &v
	}
}

func assignString(p *Properties, id PropertyID, s string) {
	switch id {
	case PropContentType:
		p.ContentType = &s
	case PropResponseTopic:
		p.ResponseTopic = &s
	case PropAssignedClientIdentifier:
		p.AssignedClientIdentifier = &s
	case PropAuthenticationMethod:
		p.AuthenticationMethod = &s
	case PropResponseInformation:
		p.ResponseInformation = &s
	case PropServerReference:
		p.ServerReference = &s
	case PropReasonString:
		p.ReasonString = &s
	}
}

func assignBinary(p *Properties, id PropertyID, data []byte) {
	switch id {
	case PropCorrelationData:
		p.CorrelationData = data
		p.CorrelationDataSet = true
	case PropAuthenticationData:
		p.AuthenticationData = data
		p.AuthenticationDataSet = true
	}
}
