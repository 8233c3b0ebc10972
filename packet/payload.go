package packet

import "sync/atomic"

// smallPayloadMax is the inline-storage cutoff at or below which a Payload
// avoids a shared heap allocation, mirroring the small-payload
// optimization in the arc_payload source this type is grounded on
// (see SPEC_FULL.md §5).
const smallPayloadMax = 32

// Payload is a reference-counted byte container for PUBLISH message
// bodies. Small payloads are stored inline; larger ones share a single
// backing array across clones. Content equality is by bytes, never by
// identity, so two independently-built Payloads with the same bytes
// compare equal.
type Payload struct {
	small    [smallPayloadMax]byte
	smallLen int
	shared   *sharedBytes
}

type sharedBytes struct {
	refs atomic.Int32
	data []byte
}

// NewPayload copies b into a new Payload.
func NewPayload(b []byte) Payload {
	var p Payload
	if len(b) <= smallPayloadMax {
		p.smallLen = copy(p.small[:], b)
		return p
	}
	p.shared = &sharedBytes{data: append([]byte(nil), b...)}
	p.shared.refs.Store(1)
	return p
}

// Bytes returns the payload's content. The returned slice must not be
// mutated by the caller when the payload uses shared storage.
func (p Payload) Bytes() []byte {
	if p.shared != nil {
		return p.shared.data
	}
	return p.small[:p.smallLen]
}

func (p Payload) Len() int {
	if p.shared != nil {
		return len(p.shared.data)
	}
	return p.smallLen
}

// Clone returns a Payload sharing the same backing storage (for large
// payloads) at the cost of an atomic increment; small payloads are
// copied by value, which is already cheap.
func (p Payload) Clone() Payload {
	if p.shared != nil {
		p.shared.refs.Add(1)
	}
	return p
}

// Release must be called when a clone obtained via Clone is no longer
// needed, balancing the refcount. It is a no-op for small, inline
// payloads, which carry no shared state to release.
func (p Payload) Release() {
	if p.shared != nil {
		p.shared.refs.Add(-1)
	}
}

// Equal compares payload content, not storage identity.
func (p Payload) Equal(other Payload) bool {
	a, b := p.Bytes(), other.Bytes()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
