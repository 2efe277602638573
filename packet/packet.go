package packet

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/HondryTravis/noflo/errors"
)

// Kind identifies the packet variant flowing through a channel
type Kind int

const (
	// KindData carries a payload between components
	KindData Kind = iota
	// KindOpenBracket opens a nested sub-stream scope
	KindOpenBracket
	// KindCloseBracket closes the innermost sub-stream scope
	KindCloseBracket
)

// Wire type names for serialization and debugging
const (
	wireData         = "data"
	wireOpenBracket  = "openBracket"
	wireCloseBracket = "closeBracket"
)

// String returns the wire name of the packet kind
func (k Kind) String() string {
	switch k {
	case KindData:
		return wireData
	case KindOpenBracket:
		return wireOpenBracket
	case KindCloseBracket:
		return wireCloseBracket
	default:
		return "unknown"
	}
}

// Packet is the atomic message unit exchanged between components.
// A packet is exclusively held by its sender until delivered across a
// channel boundary, at which point ownership transfers to the receiver.
// Fan-out to multiple channels clones the packet so each downstream path
// holds an independent instance.
type Packet struct {
	id      string
	kind    Kind
	payload any
	scope   string
	index   int
	owner   string
}

// New creates a packet of the given kind. Scope groups the packet into a
// named sub-stream; an empty scope means the root stream.
func New(kind Kind, payload any, scope string) *Packet {
	return &Packet{
		id:      uuid.NewString(),
		kind:    kind,
		payload: payload,
		scope:   scope,
		index:   -1,
	}
}

// NewData creates a Data packet in the root stream
func NewData(payload any) *Packet {
	return New(KindData, payload, "")
}

// NewOpenBracket creates an OpenBracket marker for the given scope
func NewOpenBracket(scope string) *Packet {
	return New(KindOpenBracket, nil, scope)
}

// NewCloseBracket creates a CloseBracket marker for the given scope
func NewCloseBracket(scope string) *Packet {
	return New(KindCloseBracket, nil, scope)
}

// ID returns the unique packet identifier
func (p *Packet) ID() string { return p.id }

// Kind returns the packet variant
func (p *Packet) Kind() Kind { return p.kind }

// Payload returns the carried payload; nil for bracket markers
func (p *Packet) Payload() any { return p.payload }

// Scope returns the sub-stream scope the packet belongs to
func (p *Packet) Scope() string { return p.scope }

// Index returns the addressable port index, or -1 when unaddressed
func (p *Packet) Index() int { return p.index }

// SetIndex records the addressable port index the packet targets
func (p *Packet) SetIndex(index int) { p.index = index }

// Owner returns the identifier of the current exclusive holder
func (p *Packet) Owner() string { return p.owner }

// TransferOwnership hands the packet to a new exclusive holder. The
// runtime calls this on delivery; components never share a live packet.
func (p *Packet) TransferOwnership(to string) {
	p.owner = to
}

// Clone returns an independent copy with a fresh identity and no owner.
// Map and slice payloads are copied recursively so no aliasing persists
// between fan-out paths.
func (p *Packet) Clone() *Packet {
	return &Packet{
		id:      uuid.NewString(),
		kind:    p.kind,
		payload: clonePayload(p.payload),
		scope:   p.scope,
		index:   p.index,
	}
}

func clonePayload(payload any) any {
	switch v := payload.(type) {
	case map[string]any:
		cloned := make(map[string]any, len(v))
		for key, value := range v {
			cloned[key] = clonePayload(value)
		}
		return cloned
	case []any:
		cloned := make([]any, len(v))
		for i, value := range v {
			cloned[i] = clonePayload(value)
		}
		return cloned
	case []byte:
		cloned := make([]byte, len(v))
		copy(cloned, v)
		return cloned
	default:
		return v
	}
}

// wirePacket is the serialization shape:
// {type: "data"|"openBracket"|"closeBracket", payload?, scope?, index?}
type wirePacket struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
	Scope   string `json:"scope,omitempty"`
	Index   *int   `json:"index,omitempty"`
}

// MarshalJSON serializes the packet to its wire shape
func (p *Packet) MarshalJSON() ([]byte, error) {
	wire := wirePacket{
		Type:    p.kind.String(),
		Payload: p.payload,
		Scope:   p.scope,
	}
	if p.index >= 0 {
		index := p.index
		wire.Index = &index
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reconstructs a packet from its wire shape. The packet
// receives a fresh identity and no owner.
func (p *Packet) UnmarshalJSON(data []byte) error {
	var wire wirePacket
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "Packet", "UnmarshalJSON", "wire decoding")
	}

	switch wire.Type {
	case wireData:
		p.kind = KindData
	case wireOpenBracket:
		p.kind = KindOpenBracket
	case wireCloseBracket:
		p.kind = KindCloseBracket
	default:
		return errors.WrapInvalid(
			fmt.Errorf("unknown packet type: %s", wire.Type),
			"Packet", "UnmarshalJSON", "type validation")
	}

	p.id = uuid.NewString()
	p.payload = wire.Payload
	p.scope = wire.Scope
	p.index = -1
	if wire.Index != nil {
		p.index = *wire.Index
	}
	p.owner = ""

	return nil
}
