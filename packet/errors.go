package packet

import "fmt"

// Kind is the error taxonomy from the connection driver's error model
// (spec §7). The codec produces MalformedPacket, ProtocolError and, for
// a CONNECT with an unknown version byte, UnsupportedProtocolVersion;
// the remaining kinds are produced by the driver layer
// in package mqttcore but share this type so a single switch covers
// both layers.
type Kind uint8

const (
	KindMalformedPacket Kind = iota
	KindProtocolError
	KindReceiveMaximumExceeded
	KindTopicAliasInvalid
	KindPacketTooLarge
	KindPacketIdentifierExhausted
	KindPacketIdentifierConflict
	KindPacketNotAllowedToSend
	KindUnsupportedProtocolVersion
)

func (k Kind) String() string {
	switch k {
	case KindMalformedPacket:
		return "malformed packet"
	case KindProtocolError:
		return "protocol error"
	case KindReceiveMaximumExceeded:
		return "receive maximum exceeded"
	case KindTopicAliasInvalid:
		return "topic alias invalid"
	case KindPacketTooLarge:
		return "packet too large"
	case KindPacketIdentifierExhausted:
		return "packet identifier exhausted"
	case KindPacketIdentifierConflict:
		return "packet identifier conflict"
	case KindPacketNotAllowedToSend:
		return "packet not allowed to send"
	case KindUnsupportedProtocolVersion:
		return "unsupported protocol version"
	default:
		return "unknown"
	}
}

// ReasonCode pairs the numeric wire reason/return code with the Kind it
// maps to for DISCONNECT/CONNACK generation. The zero value is Success.
type ReasonCode struct {
	Code uint8
	Kind Kind
	Text string
}

func (rc ReasonCode) Error() string { return fmt.Sprintf("0x%02x %s", rc.Code, rc.Text) }

// IsError reports whether the reason code indicates a failure, per the
// MQTT-5 convention that codes >= 0x80 are errors.
func (rc ReasonCode) IsError() bool { return rc.Code >= 0x80 }

var (
	Success                  = ReasonCode{Code: 0x00, Text: "success"}
	GrantedQoS0              = ReasonCode{Code: 0x00, Text: "granted qos 0"}
	GrantedQoS1              = ReasonCode{Code: 0x01, Text: "granted qos 1"}
	GrantedQoS2              = ReasonCode{Code: 0x02, Text: "granted qos 2"}
	DisconnectNormal         = ReasonCode{Code: 0x00, Text: "normal disconnection"}
	DisconnectWillMessage    = ReasonCode{Code: 0x04, Text: "disconnect with will message"}
	NoMatchingSubscribers    = ReasonCode{Code: 0x10, Text: "no matching subscribers"}
	NoSubscriptionExisted    = ReasonCode{Code: 0x11, Text: "no subscription existed"}
	ContinueAuthentication   = ReasonCode{Code: 0x18, Text: "continue authentication"}
	ReAuthenticate           = ReasonCode{Code: 0x19, Text: "re-authenticate"}
	UnspecifiedError         = ReasonCode{Code: 0x80, Kind: KindProtocolError, Text: "unspecified error"}
	MalformedPacketCode      = ReasonCode{Code: 0x81, Kind: KindMalformedPacket, Text: "malformed packet"}
	ProtocolErrorCode        = ReasonCode{Code: 0x82, Kind: KindProtocolError, Text: "protocol error"}
	ImplementationSpecific   = ReasonCode{Code: 0x83, Kind: KindProtocolError, Text: "implementation specific error"}
	UnsupportedProtoVersion  = ReasonCode{Code: 0x84, Kind: KindUnsupportedProtocolVersion, Text: "unsupported protocol version"}
	ClientIdentifierNotValid = ReasonCode{Code: 0x85, Kind: KindProtocolError, Text: "client identifier not valid"}
	BadUsernameOrPassword    = ReasonCode{Code: 0x86, Kind: KindProtocolError, Text: "bad username or password"}
	NotAuthorized            = ReasonCode{Code: 0x87, Kind: KindProtocolError, Text: "not authorized"}
	ServerUnavailable        = ReasonCode{Code: 0x88, Kind: KindProtocolError, Text: "server unavailable"}
	ServerBusy               = ReasonCode{Code: 0x89, Kind: KindProtocolError, Text: "server busy"}
	Banned                   = ReasonCode{Code: 0x8A, Kind: KindProtocolError, Text: "banned"}
	BadAuthenticationMethod  = ReasonCode{Code: 0x8C, Kind: KindProtocolError, Text: "bad authentication method"}
	KeepAliveTimeoutCode     = ReasonCode{Code: 0x8D, Kind: KindProtocolError, Text: "keep alive timeout"}
	TopicFilterInvalid       = ReasonCode{Code: 0x8F, Kind: KindProtocolError, Text: "topic filter invalid"}
	TopicNameInvalid         = ReasonCode{Code: 0x90, Kind: KindProtocolError, Text: "topic name invalid"}
	PacketIdentifierInUse    = ReasonCode{Code: 0x91, Kind: KindPacketIdentifierConflict, Text: "packet identifier in use"}
	PacketIdentifierNotFound = ReasonCode{Code: 0x92, Kind: KindProtocolError, Text: "packet identifier not found"}
	ReceiveMaximumExceeded   = ReasonCode{Code: 0x93, Kind: KindReceiveMaximumExceeded, Text: "receive maximum exceeded"}
	TopicAliasInvalid        = ReasonCode{Code: 0x94, Kind: KindTopicAliasInvalid, Text: "topic alias invalid"}
	PacketTooLargeCode       = ReasonCode{Code: 0x95, Kind: KindPacketTooLarge, Text: "packet too large"}
	QuotaExceeded            = ReasonCode{Code: 0x97, Text: "quota exceeded"}
	PayloadFormatInvalid     = ReasonCode{Code: 0x99, Kind: KindProtocolError, Text: "payload format invalid"}
	WildcardSubsNotSupported = ReasonCode{Code: 0xA2, Text: "wildcard subscriptions not supported"}
)

// CodecError is returned by Decode and every per-type decoder. It
// always carries a wire-safe ReasonCode so the driver can turn it
// directly into a DISCONNECT packet per spec §7.
type CodecError struct {
	Reason ReasonCode
	Msg    string
}

func (e *CodecError) Error() string {
	if e.Msg == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Msg)
}

func (e *CodecError) Unwrap() error { return e.Reason }

func ErrMalformedPacket(msg string) error {
	return &CodecError{Reason: MalformedPacketCode, Msg: msg}
}

func ErrProtocolError(msg string) error {
	return &CodecError{Reason: ProtocolErrorCode, Msg: msg}
}
