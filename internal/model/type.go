package model

import (
	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/store"
)

// Accessor is an explicit property on a record type, such as a value
// derived from several fields. Set may be nil for read-only accessors.
type Accessor struct {
	Get func(r *Record) any
	Set func(r *Record, v any) error
}

// Type is a record type. Build it with Define; the zero Type is abstract
// and cannot produce records.
type Type struct {
	name      string
	schema    *attr.Schema
	backend   store.Store
	accessors map[string]Accessor
	defined   bool
}

// TypeOption configures Define.
type TypeOption func(*Type) error

// WithStore sets the store records of the type persist through.
func WithStore(s store.Store) TypeOption {
	return func(t *Type) error {
		return t.SetStore(s)
	}
}

// WithAccessor adds an explicit accessor. A name that already has an
// accessor keeps the first one.
func WithAccessor(name string, a Accessor) TypeOption {
	return func(t *Type) error {
		if a.Get == nil {
			return &attr.ConfigurationError{Field: name, Reason: "accessor needs a getter"}
		}
		if _, exists := t.accessors[name]; !exists {
			t.accessors[name] = a
		}
		return nil
	}
}

// Define creates a record type. A nil schema is accepted here and rejected
// when a record is built, mirroring a type that never declared its fields.
func Define(name string, schema *attr.Schema, opts ...TypeOption) (*Type, error) {
	if name == "" {
		return nil, &attr.ConfigurationError{Reason: "model name is required"}
	}

	t := &Type{
		name:      name,
		schema:    schema,
		accessors: make(map[string]Accessor),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	t.defined = true
	return t, nil
}

// MustDefine is Define for package-level declarations; it panics on error.
func MustDefine(name string, schema *attr.Schema, opts ...TypeOption) *Type {
	t, err := Define(name, schema, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the type name.
func (t *Type) Name() string { return t.name }

// Schema returns the type's schema, nil if it has none.
func (t *Type) Schema() *attr.Schema { return t.schema }

// Store returns the type's store, nil if it has none.
func (t *Type) Store() store.Store { return t.backend }

// SetStore replaces the type's store. The abstract store.Base is rejected.
// It is not safe to call while records of the type are being persisted.
func (t *Type) SetStore(s store.Store) error {
	if err := store.Concrete(s); err != nil {
		return err
	}
	t.backend = s
	return nil
}

// HasAccessor reports whether name has an explicit accessor.
func (t *Type) HasAccessor(name string) bool {
	_, ok := t.accessors[name]
	return ok
}

// New builds a record of this type; see the package-level New.
func (t *Type) New(data map[string]any) (*Record, error) {
	return New(t, data)
}
