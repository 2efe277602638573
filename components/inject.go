package components

import (
	"context"
	"encoding/json"

	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
	"github.com/HondryTravis/noflo/packet"
)

// InjectConfig holds configuration for the Inject source component.
type InjectConfig struct {
	// Values are emitted on "out" in order during the single activation.
	Values []any `json:"values"`
	// Bracket, when set, wraps the emitted values in an open/close
	// bracket pair scoped to its value.
	Bracket string `json:"bracket,omitempty"`
}

// Inject is a source component: it has no inputs and emits its
// configured payloads exactly once when the network starts.
type Inject struct {
	config InjectConfig
	done   bool
}

// NewInject creates an Inject component from configuration.
func NewInject(rawConfig json.RawMessage, deps component.Dependencies) (component.Component, error) {
	var config InjectConfig
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, errors.WrapInvalid(err, "Inject", "NewInject", "config unmarshal")
	}
	return &Inject{config: config}, nil
}

// Name returns the component type name.
func (c *Inject) Name() string { return "core/Inject" }

// Definition declares the single output port.
func (c *Inject) Definition() component.Definition {
	return component.Definition{
		Description: "emits configured payloads once at startup",
		OutPorts: []component.Port{
			{Name: "out", Description: "injected payloads"},
		},
	}
}

// Activate emits every configured value, bracketed when configured.
func (c *Inject) Activate(ctx context.Context, ac *component.ActivationContext) error {
	c.done = true

	if c.config.Bracket != "" {
		if err := ac.Send("out", packet.NewOpenBracket(c.config.Bracket)); err != nil {
			return errors.Wrap(err, "Inject", "Activate", "open bracket send")
		}
	}
	for _, v := range c.config.Values {
		if err := ac.SendData("out", v); err != nil {
			return errors.Wrap(err, "Inject", "Activate", "payload send")
		}
	}
	if c.config.Bracket != "" {
		if err := ac.Send("out", packet.NewCloseBracket(c.config.Bracket)); err != nil {
			return errors.Wrap(err, "Inject", "Activate", "close bracket send")
		}
	}
	return nil
}

// Done reports completion after the single emission.
func (c *Inject) Done() bool { return c.done }
