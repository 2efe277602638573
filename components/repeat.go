package components

import (
	"context"
	"encoding/json"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
)

// Repeat forwards every packet from "in" to "out" unchanged, brackets
// included. It is the identity component used to fan a stream out or to
// decouple two stages.
type Repeat struct{}

// NewRepeat creates a Repeat component. It takes no configuration.
func NewRepeat(rawConfig json.RawMessage, deps component.Dependencies) (component.Component, error) {
	return &Repeat{}, nil
}

// Name returns the component type name.
func (c *Repeat) Name() string { return "core/Repeat" }

// Definition declares the pass-through port pair.
func (c *Repeat) Definition() component.Definition {
	return component.Definition{
		Description: "forwards packets unchanged",
		InPorts: []component.Port{
			{Name: "in", Description: "packets to forward", Required: true},
		},
		OutPorts: []component.Port{
			{Name: "out", Description: "forwarded packets"},
		},
	}
}

// Activate drains every buffered packet and forwards it.
func (c *Repeat) Activate(ctx context.Context, ac *component.ActivationContext) error {
	for {
		p, ok := ac.Receive("in")
		if !ok {
			return nil
		}
		if err := ac.Send("out", p); err != nil {
			return errors.Wrap(err, "Repeat", "Activate", "forward")
		}
	}
}
