package mqttcore

import (
	"fmt"

	"github.com/mqttkit/core/packet"
)

// DriverError is returned by host-facing operations that can fail without
// a corresponding packet exchange (acquire/register packet id, sendability
// gate, packet-too-large). Kind mirrors the taxonomy the codec's CodecError
// already carries, so callers can switch on one type across both layers.
type DriverError struct {
	Kind packet.Kind
	Msg  string
}

func (e *DriverError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func newDriverError(kind packet.Kind, msg string) *DriverError {
	return &DriverError{Kind: kind, Msg: msg}
}
