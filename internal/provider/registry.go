package provider

import (
	"fmt"
	"sort"
)

// Factory builds a Provider from whatever configuration it was registered with.
type Factory func() (Provider, error)

// The registry is static: implementations register themselves by id at wiring
// time and selection happens once at process start, never per request.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry constructs an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a provider factory under an id. Registering the same id twice
// is a programming error and panics at startup rather than at request time.
func (r *Registry) Register(id string, factory Factory) {
	if _, exists := r.factories[id]; exists {
		panic(fmt.Sprintf("provider %q registered twice", id))
	}
	r.factories[id] = factory
}

// Load builds the provider for the configured id.
func (r *Registry) Load(id string) (Provider, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("unknown provider id %q (registered: %v)", id, r.ids())
	}
	return factory()
}

func (r *Registry) ids() []string {
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
