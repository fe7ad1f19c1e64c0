package model

import "fmt"

// Registry holds the record types known to a program, by name.
type Registry struct {
	types  []*Type
	byName map[string]*Type
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  []*Type{},
		byName: make(map[string]*Type),
	}
}

// Register adds t. Names are unique within a registry.
func (r *Registry) Register(t *Type) error {
	if t == nil || !t.defined {
		return &AbstractInstantiationError{Name: "model.Type"}
	}
	if _, exists := r.byName[t.name]; exists {
		return fmt.Errorf("model: %s already registered", t.name)
	}
	r.types = append(r.types, t)
	r.byName[t.name] = t
	return nil
}

// Lookup returns the type registered as name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Types returns all registered types in registration order.
func (r *Registry) Types() []*Type {
	out := make([]*Type, len(r.types))
	copy(out, r.types)
	return out
}
