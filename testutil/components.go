package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/packet"
)

// MockComponent is a scriptable component for tests. Its declared ports
// and activation behavior are injected; call counts are tracked for
// verification.
type MockComponent struct {
	mu sync.Mutex

	// ComponentName is returned by Name. Defaults to "testutil/Mock".
	ComponentName string
	// Ports declares the component surface.
	Ports component.Definition
	// ActivateFunc runs on every activation. Nil means drain all inputs
	// and discard.
	ActivateFunc func(ctx context.Context, ac *component.ActivationContext) error
	// Finished makes Done report true, ending the component.
	Finished bool

	activations int
}

// NewMockComponent creates a mock with a single "in" port and a default
// drain-and-discard activation.
func NewMockComponent() *MockComponent {
	return &MockComponent{
		Ports: component.Definition{
			InPorts: []component.Port{{Name: "in"}},
		},
	}
}

// Name returns the configured component name.
func (m *MockComponent) Name() string {
	if m.ComponentName != "" {
		return m.ComponentName
	}
	return "testutil/Mock"
}

// Definition returns the configured port declaration.
func (m *MockComponent) Definition() component.Definition { return m.Ports }

// Activate runs the scripted behavior and counts the call.
func (m *MockComponent) Activate(ctx context.Context, ac *component.ActivationContext) error {
	m.mu.Lock()
	m.activations++
	fn := m.ActivateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, ac)
	}
	for _, p := range m.Ports.InPorts {
		for {
			if _, ok := ac.Receive(p.Name); !ok {
				break
			}
		}
	}
	return nil
}

// Done reports whether the component has finished.
func (m *MockComponent) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Finished
}

// Activations returns how many times Activate ran.
func (m *MockComponent) Activations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activations
}

// Factory returns a component factory producing this mock instance,
// ignoring configuration.
func (m *MockComponent) Factory() component.Factory {
	return func(json.RawMessage, component.Dependencies) (component.Component, error) {
		return m, nil
	}
}

// Emitter is a source component that sends its payloads on "out" once
// and finishes.
type Emitter struct {
	mu       sync.Mutex
	payloads []any
	done     bool
}

// NewEmitter creates an Emitter for the given payloads.
func NewEmitter(payloads ...any) *Emitter {
	return &Emitter{payloads: payloads}
}

// Name returns the component type name.
func (e *Emitter) Name() string { return "testutil/Emitter" }

// Definition declares the single output port.
func (e *Emitter) Definition() component.Definition {
	return component.Definition{
		OutPorts: []component.Port{{Name: "out"}},
	}
}

// Activate emits every payload in order.
func (e *Emitter) Activate(ctx context.Context, ac *component.ActivationContext) error {
	e.mu.Lock()
	e.done = true
	payloads := e.payloads
	e.mu.Unlock()

	for _, v := range payloads {
		if err := ac.SendData("out", v); err != nil {
			return err
		}
	}
	return nil
}

// Done reports completion after the single emission.
func (e *Emitter) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Factory returns a component factory producing this emitter instance.
func (e *Emitter) Factory() component.Factory {
	return func(json.RawMessage, component.Dependencies) (component.Component, error) {
		return e, nil
	}
}

// Recorder is a sink component that remembers every packet received on
// "in", safe to inspect from the test goroutine.
type Recorder struct {
	mu      sync.Mutex
	packets []*packet.Packet
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Name returns the component type name.
func (r *Recorder) Name() string { return "testutil/Recorder" }

// Definition declares the single input port.
func (r *Recorder) Definition() component.Definition {
	return component.Definition{
		InPorts: []component.Port{{Name: "in"}},
	}
}

// Activate drains and records every buffered packet.
func (r *Recorder) Activate(ctx context.Context, ac *component.ActivationContext) error {
	for {
		p, ok := ac.Receive("in")
		if !ok {
			return nil
		}
		r.mu.Lock()
		r.packets = append(r.packets, p)
		r.mu.Unlock()
	}
}

// Packets returns a copy of everything recorded so far.
func (r *Recorder) Packets() []*packet.Packet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*packet.Packet(nil), r.packets...)
}

// Payloads returns the payloads of recorded data packets in order.
func (r *Recorder) Payloads() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []any
	for _, p := range r.packets {
		if p.Kind() == packet.KindData {
			out = append(out, p.Payload())
		}
	}
	return out
}

// Factory returns a component factory producing this recorder instance.
func (r *Recorder) Factory() component.Factory {
	return func(json.RawMessage, component.Dependencies) (component.Component, error) {
		return r, nil
	}
}
