package component

import (
	"fmt"

	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/packet"
)

// Channel is the endpoint contract a runtime port needs from a
// connection. The concrete implementation lives in the network package;
// ports only push, pop and inspect.
type Channel interface {
	ID() string
	Push(p *packet.Packet) error
	Pop() (*packet.Packet, bool)
	Len() int
}

// InputPort is the runtime state of a declared input port: the ordered
// list of channels feeding it. Buffering lives in the channels; the port
// drains them in attachment order.
type InputPort struct {
	desc     Port
	channels []Channel
}

// NewInputPort creates the runtime endpoint for a declared input port.
func NewInputPort(desc Port) *InputPort {
	desc.Direction = DirectionInput
	return &InputPort{desc: desc}
}

// Descriptor returns the declared port metadata.
func (p *InputPort) Descriptor() Port { return p.desc }

// Attach adds a channel feeding this port. A non-addressable port accepts
// exactly one attachment; an addressable port accepts any number of
// distinct channels.
func (p *InputPort) Attach(ch Channel) error {
	if ch == nil {
		return errors.WrapInvalid(errors.ErrProtocol, "InputPort", "Attach", "nil channel check")
	}
	if !p.desc.Addressable && len(p.channels) > 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: port %q", errors.ErrAlreadyAttached, p.desc.Name),
			"InputPort", "Attach", "single attachment check")
	}
	for _, existing := range p.channels {
		if existing.ID() == ch.ID() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: channel %s on port %q", errors.ErrAlreadyAttached, ch.ID(), p.desc.Name),
				"InputPort", "Attach", "duplicate channel check")
		}
	}
	p.channels = append(p.channels, ch)
	return nil
}

// Detach removes a channel from the port, preserving the order of the
// remaining attachments. Returns false if the channel was not attached.
func (p *InputPort) Detach(ch Channel) bool {
	for i, existing := range p.channels {
		if existing.ID() == ch.ID() {
			p.channels = append(p.channels[:i], p.channels[i+1:]...)
			return true
		}
	}
	return false
}

// Receive pops the oldest buffered packet, scanning attached channels in
// attachment order. The second return is false when no data is buffered;
// that is not an error.
func (p *InputPort) Receive() (*packet.Packet, bool) {
	for _, ch := range p.channels {
		if pkt, ok := ch.Pop(); ok {
			return pkt, true
		}
	}
	return nil, false
}

// HasData reports whether any attached channel holds an unread packet.
// Query only, no side effects.
func (p *InputPort) HasData() bool {
	for _, ch := range p.channels {
		if ch.Len() > 0 {
			return true
		}
	}
	return false
}

// IsConnected reports whether at least one channel is attached.
func (p *InputPort) IsConnected() bool { return len(p.channels) > 0 }

// Channels returns the attached channels in attachment order.
func (p *InputPort) Channels() []Channel { return p.channels }

// OutputPort is the runtime state of a declared output port. It holds no
// buffer; Send forwards to every attachment.
type OutputPort struct {
	desc     Port
	channels []Channel
}

// NewOutputPort creates the runtime endpoint for a declared output port.
func NewOutputPort(desc Port) *OutputPort {
	desc.Direction = DirectionOutput
	return &OutputPort{desc: desc}
}

// Descriptor returns the declared port metadata.
func (p *OutputPort) Descriptor() Port { return p.desc }

// Attach adds a downstream channel. Output ports always accept multiple
// attachments since a producer may fan out to several consumers; only
// duplicate channel identities are rejected.
func (p *OutputPort) Attach(ch Channel) error {
	if ch == nil {
		return errors.WrapInvalid(errors.ErrProtocol, "OutputPort", "Attach", "nil channel check")
	}
	for _, existing := range p.channels {
		if existing.ID() == ch.ID() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: channel %s on port %q", errors.ErrAlreadyAttached, ch.ID(), p.desc.Name),
				"OutputPort", "Attach", "duplicate channel check")
		}
	}
	p.channels = append(p.channels, ch)
	return nil
}

// Detach removes a channel from the port. Returns false if the channel
// was not attached.
func (p *OutputPort) Detach(ch Channel) bool {
	for i, existing := range p.channels {
		if existing.ID() == ch.ID() {
			p.channels = append(p.channels[:i], p.channels[i+1:]...)
			return true
		}
	}
	return false
}

// Send forwards the packet to every attached channel. With a single
// attachment ownership of the original transfers downstream; with fan-out
// each channel receives an independent clone so no aliasing survives the
// send. The first push failure aborts the send and is returned.
func (p *OutputPort) Send(pkt *packet.Packet) error {
	if len(p.channels) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: output port %q", errors.ErrPortNotFound, p.desc.Name),
			"OutputPort", "Send", "attachment check")
	}
	if len(p.channels) == 1 {
		if err := p.channels[0].Push(pkt); err != nil {
			return errors.Wrap(err, "OutputPort", "Send", "channel push")
		}
		return nil
	}
	for _, ch := range p.channels {
		if err := ch.Push(pkt.Clone()); err != nil {
			return errors.Wrap(err, "OutputPort", "Send", "fan-out push")
		}
	}
	return nil
}

// IsConnected reports whether at least one channel is attached.
func (p *OutputPort) IsConnected() bool { return len(p.channels) > 0 }

// Channels returns the attached channels in attachment order.
func (p *OutputPort) Channels() []Channel { return p.channels }
