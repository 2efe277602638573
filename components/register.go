package components

import (
	"github.com/HondryTravis/noflo/component"
	"github.com/HondryTravis/noflo/errors"
)

// Register adds every builtin component factory to the registry.
func Register(reg *component.Registry) error {
	builtins := []struct {
		name        string
		description string
		factory     component.Factory
	}{
		{"core/Inject", "emits configured payloads once at startup", NewInject},
		{"core/Repeat", "forwards packets unchanged", NewRepeat},
		{"core/Counter", "counts data packets", NewCounter},
		{"core/LogSink", "logs received packets", NewLogSink},
	}

	for _, b := range builtins {
		err := reg.RegisterFactory(b.name, &component.Registration{
			Description: b.description,
			Version:     "1.0.0",
			Factory:     b.factory,
		})
		if err != nil {
			return errors.Wrap(err, "components", "Register", "builtin registration")
		}
	}
	return nil
}
