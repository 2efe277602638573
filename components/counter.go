package components

import (
	"context"
	"encoding/json"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/packet"
)

// CounterConfig holds configuration for the Counter component.
type CounterConfig struct {
	// EmitEach, when true, emits the running count after every data
	// packet instead of only on bracket close.
	EmitEach bool `json:"emitEach"`
}

// Counter counts data packets arriving on "in". With EmitEach it emits
// the running count per packet; otherwise it emits one total when a
// bracketed sub-stream closes.
type Counter struct {
	config CounterConfig
	count  int64
}

// NewCounter creates a Counter component from configuration.
func NewCounter(rawConfig json.RawMessage, deps component.Dependencies) (component.Component, error) {
	var config CounterConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.WrapInvalid(err, "Counter", "NewCounter", "config unmarshal")
	}
	return &Counter{config: config}, nil
}

// Name returns the component type name.
func (c *Counter) Name() string { return "core/Counter" }

// Definition declares the counting port pair.
func (c *Counter) Definition() component.Definition {
	return component.Definition{
		Description: "counts data packets",
		InPorts: []component.Port{
			{Name: "in", Description: "packets to count", Required: true},
		},
		OutPorts: []component.Port{
			{Name: "count", Description: "running or per-stream count"},
		},
	}
}

// Activate consumes buffered packets, updating and emitting the count.
func (c *Counter) Activate(ctx context.Context, ac *component.ActivationContext) error {
	for {
		p, ok := ac.Receive("in")
		if !ok {
			return nil
		}

		switch p.Kind() {
		case packet.KindData:
			c.count++
			if c.config.EmitEach {
				if err := ac.SendData("count", c.count); err != nil {
					return errors.Wrap(err, "Counter", "Activate", "count send")
				}
			}
		case packet.KindCloseBracket:
			if !c.config.EmitEach {
				if err := ac.SendData("count", c.count); err != nil {
					return errors.Wrap(err, "Counter", "Activate", "total send")
				}
				c.count = 0
			}
		}
	}
}
