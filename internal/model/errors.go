package model

import (
	"errors"
	"fmt"

	"github.com/roach88/schemata/internal/store"
)

// AbstractInstantiationError is returned by New for a nil or undefined
// record Type.
type AbstractInstantiationError = store.AbstractInstantiationError

var (
	// ErrNoStore is returned by persistence calls on a type without a store.
	ErrNoStore = errors.New("model: type has no store")

	// ErrReadOnly is returned by Set for an accessor without a setter.
	ErrReadOnly = errors.New("model: accessor is read-only")
)

// SchemaRequiredError is returned by New when the record type has no schema.
type SchemaRequiredError struct {
	Type string
}

func (e *SchemaRequiredError) Error() string {
	return fmt.Sprintf("model: %s has no schema", e.Type)
}

// FieldError wraps a coercion failure with the field it happened on.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("model: %s.%s: %v", e.Type, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// IsSchemaRequired reports whether err is a SchemaRequiredError.
func IsSchemaRequired(err error) bool {
	var se *SchemaRequiredError
	return errors.As(err, &se)
}
