package component

import (
	"context"
	"fmt"

	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/packet"
)

// Component is a named processing unit. Definition declares its ports;
// Activate is the single entry point the scheduler invokes when input
// data is available. Activations must not retain the ActivationContext
// past their return.
type Component interface {
	Name() string
	Definition() Definition
	Activate(ctx context.Context, ac *ActivationContext) error
}

// Ender is an optional interface for components that signal permanent
// completion. After Done reports true the scheduler moves the component
// to Ended and never activates it again.
type Ender interface {
	Done() bool
}

// ActivationContext gives an activation read access to the component's
// input ports and write access to its outputs. It is valid only for the
// duration of one activation.
type ActivationContext struct {
	inputs  map[string]*InputPort
	outputs map[string]*OutputPort
}

// NewActivationContext builds a context over the component's runtime
// ports. The scheduler owns the port maps; the context only exposes them.
func NewActivationContext(inputs map[string]*InputPort, outputs map[string]*OutputPort) *ActivationContext {
	return &ActivationContext{inputs: inputs, outputs: outputs}
}

// Input returns the runtime input port by name, or nil when not declared.
func (ac *ActivationContext) Input(name string) *InputPort {
	return ac.inputs[name]
}

// Output returns the runtime output port by name, or nil when not declared.
func (ac *ActivationContext) Output(name string) *OutputPort {
	return ac.outputs[name]
}

// Receive pops the oldest packet from the named input port. The boolean
// is false when the port has no buffered data or is not declared.
func (ac *ActivationContext) Receive(port string) (*packet.Packet, bool) {
	in, ok := ac.inputs[port]
	if !ok {
		return nil, false
	}
	return in.Receive()
}

// Send forwards a packet on the named output port.
func (ac *ActivationContext) Send(port string, pkt *packet.Packet) error {
	out, ok := ac.outputs[port]
	if !ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: output port %q", errors.ErrPortNotFound, port),
			"ActivationContext", "Send", "port lookup")
	}
	return out.Send(pkt)
}

// SendData wraps the payload in a data packet and sends it.
func (ac *ActivationContext) SendData(port string, payload any) error {
	return ac.Send(port, packet.NewData(payload))
}

// HasData reports whether the named input port has buffered packets.
func (ac *ActivationContext) HasData(port string) bool {
	in, ok := ac.inputs[port]
	return ok && in.HasData()
}
