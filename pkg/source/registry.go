package source

import (
	"fmt"
	"log/slog"
	"sort"
)

// Factory builds a configured connector. Factories are closures over the
// vendor's config section, registered during CLI startup.
type Factory func(logger *slog.Logger) (Source, error)

// Registry maps vendor ids to connector factories.
type Registry struct {
	logger    *slog.Logger
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under the given vendor id, replacing any previous
// registration.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create builds the connector registered under the given vendor id.
func (r *Registry) Create(name string) (Source, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("source %q not registered (available: %v)", name, r.Names())
	}

	return factory(r.logger.With("source", name))
}

// IsRegistered reports whether a vendor id has a factory.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.factories[name]

	return ok
}

// Names returns all registered vendor ids, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
