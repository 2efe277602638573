package component

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/HondryTravis/noflo/errors"
)

// Factory creates a component instance from configuration. The factory
// receives raw JSON configuration and dependencies, parses its own
// config, and returns an initialized component. Factories do no I/O;
// all work happens inside activations.
type Factory func(rawConfig json.RawMessage, deps Dependencies) (Component, error)

// Registration holds factory and metadata for a component type
type Registration struct {
	Name        string  `json:"name"`        // Factory name (e.g., "core/Repeat")
	Description string  `json:"description"` // Human-readable description
	Version     string  `json:"version"`     // Component version
	Factory     Factory `json:"-"`           // Factory function (not serializable)
}

// Registry maps component names to factories. It is the Loader the
// network uses to resolve graph nodes; Resolve fails with
// ErrComponentNotFound when a name is unknown.
type Registry struct {
	factories map[string]*Registration
	mu        sync.RWMutex
}

// NewRegistry creates a new empty component registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]*Registration),
	}
}

// RegisterFactory registers a component factory under a name. Returns an
// error when the name is invalid or already taken.
func (r *Registry) RegisterFactory(name string, registration *Registration) error {
	if err := ValidateComponentName(name); err != nil {
		return errors.Wrap(err, "Registry", "RegisterFactory", "factory name validation")
	}
	if registration == nil || registration.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "RegisterFactory", "factory function validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("factory %q is already registered", name),
			"Registry", "RegisterFactory", "duplicate factory check")
	}

	registration.Name = name
	r.factories[name] = registration
	return nil
}

// Resolve looks up the factory registered under name.
func (r *Registry) Resolve(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registration, exists := r.factories[name]
	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrComponentNotFound, name),
			"Registry", "Resolve", "factory lookup")
	}
	return registration.Factory, nil
}

// Create resolves the factory for name and invokes it with the given
// configuration and dependencies.
func (r *Registry) Create(name string, rawConfig json.RawMessage, deps Dependencies) (Component, error) {
	factory, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	comp, err := factory(rawConfig, deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "Create", "factory execution")
	}
	return comp, nil
}

// ListFactories returns a copy of all registrations keyed by name,
// without the factory functions.
func (r *Registry) ListFactories() map[string]Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Registration, len(r.factories))
	for name, registration := range r.factories {
		result[name] = Registration{
			Name:        registration.Name,
			Description: registration.Description,
			Version:     registration.Version,
		}
	}
	return result
}

// ListComponentTypes returns all registered factory names.
func (r *Registry) ListComponentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// Merge copies every registration from other into r. Existing names are
// kept; conflicting names from other are skipped and reported.
func (r *Registry) Merge(other *Registry) []string {
	other.mu.RLock()
	incoming := make(map[string]*Registration, len(other.factories))
	maps.Copy(incoming, other.factories)
	other.mu.RUnlock()

	var skipped []string
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, registration := range incoming {
		if _, exists := r.factories[name]; exists {
			skipped = append(skipped, name)
			continue
		}
		r.factories[name] = registration
	}
	return skipped
}

// MaxNameLength bounds component and factory names.
const MaxNameLength = 256

// ValidateComponentName validates component and factory names. Names are
// restricted to alphanumerics plus dash, underscore, dot and slash so
// they are safe in logs, metrics labels and file paths.
func ValidateComponentName(name string) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "ValidateComponentName", "empty name")
	}
	if len(name) > MaxNameLength {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "ValidateComponentName", "name too long")
	}
	if strings.ContainsAny(name, "\x00\n\r\t ") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "ValidateComponentName", "invalid name characters")
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' || r == '/') {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "ValidateComponentName", "invalid name characters")
		}
	}
	return nil
}
