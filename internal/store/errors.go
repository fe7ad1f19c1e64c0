package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no stored record matches.
var ErrNotFound = errors.New("store: record not found")

// NotImplementedError is returned by operations a store does not override.
type NotImplementedError struct {
	// Op is the operation name: "save", "destroy", "find" or "findAll".
	Op string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("store: %s not implemented", e.Op)
}

// AbstractInstantiationError is returned when an abstract base (the bare
// store Base, or an undefined record type) is used as if it were concrete.
type AbstractInstantiationError struct {
	Name string
}

func (e *AbstractInstantiationError) Error() string {
	return fmt.Sprintf("%s is abstract and cannot be instantiated", e.Name)
}

// QueryError reports a query value no bundled backend understands.
type QueryError struct {
	Query any
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("store: unsupported query of type %T", e.Query)
}

// KeyError reports a key field holding a value that cannot serve as an
// identifier.
type KeyError struct {
	Key   string
	Value any
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("store: %s of type %T is not an identifier", e.Key, e.Value)
}

// IsNotImplemented reports whether err is a NotImplementedError, and returns
// the operation name.
func IsNotImplemented(err error) (string, bool) {
	var nie *NotImplementedError
	if errors.As(err, &nie) {
		return nie.Op, true
	}
	return "", false
}

// IsAbstractInstantiation reports whether err is an AbstractInstantiationError.
func IsAbstractInstantiation(err error) bool {
	var aie *AbstractInstantiationError
	return errors.As(err, &aie)
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
