package attr

import (
	"fmt"
	"time"
)

// Kind identifies the coercion strategy of a Type.
type Kind int

const (
	kindUnresolved Kind = iota

	// KindBool coerces by truthiness.
	KindBool

	// KindInt coerces through numeric conversion, truncated to int64.
	KindInt

	// KindFloat coerces through numeric conversion to float64.
	KindFloat

	// KindString coerces through string conversion.
	KindString

	// KindTime coerces RFC 3339 strings and Unix milliseconds to time.Time.
	KindTime

	// KindObject passes any value through unchanged.
	KindObject

	// KindComposite delegates to a constructor.
	KindComposite
)

var kindNames = map[Kind]string{
	KindBool:      "bool",
	KindInt:       "int",
	KindFloat:     "float",
	KindString:    "string",
	KindTime:      "time",
	KindObject:    "object",
	KindComposite: "composite",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a coercion strategy. The zero Type is unresolved and rejected by
// New with a ConfigurationError.
type Type struct {
	kind      Kind
	name      string
	is        func(any) bool
	construct func(any) (any, error)
}

// Built-in types.
var (
	Bool   = Type{kind: KindBool, name: "bool"}
	Int    = Type{kind: KindInt, name: "int"}
	Float  = Type{kind: KindFloat, name: "float"}
	String = Type{kind: KindString, name: "string"}
	Time   = Type{kind: KindTime, name: "time"}
	Object = Type{kind: KindObject, name: "object"}
)

// Composite returns a constructor-backed Type. Values that already are a T
// pass through by identity; every other non-nil value is handed to
// construct.
func Composite[T any](name string, construct func(any) (T, error)) Type {
	if construct == nil {
		return Type{kind: KindComposite, name: name}
	}
	return Type{
		kind: KindComposite,
		name: name,
		is: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		construct: func(v any) (any, error) {
			return construct(v)
		},
	}
}

// CompositeFunc is Composite with an explicit instance check, for types
// whose identity is narrower than their Go type.
func CompositeFunc(name string, is func(any) bool, construct func(any) (any, error)) Type {
	return Type{kind: KindComposite, name: name, is: is, construct: construct}
}

// Kind returns the strategy tag.
func (t Type) Kind() Kind { return t.kind }

// Name returns the type name used in schema files and error messages.
func (t Type) Name() string { return t.name }

func (t Type) String() string {
	if t.name != "" {
		return t.name
	}
	return t.kind.String()
}

// resolve checks the type can produce values.
func (t Type) resolve() error {
	switch t.kind {
	case KindBool, KindInt, KindFloat, KindString, KindTime, KindObject:
		return nil
	case KindComposite:
		if t.construct == nil || t.is == nil {
			return &ConfigurationError{Reason: fmt.Sprintf("composite type %q has no constructor", t.name)}
		}
		return nil
	default:
		return &ConfigurationError{Reason: "type is required"}
	}
}

// Instance reports whether v already is a value of t.
func (t Type) Instance(v any) bool {
	switch t.kind {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindInt:
		_, ok := v.(int64)
		return ok
	case KindFloat:
		_, ok := v.(float64)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindTime:
		_, ok := v.(time.Time)
		return ok
	case KindObject:
		return v != nil
	case KindComposite:
		return t.is != nil && t.is(v)
	}
	return false
}

// Invalid is the degenerate result of a conversion that has no
// representation in the target type, such as "one" coerced to Int.
// It projects to JSON null.
type Invalid struct {
	Kind  Kind
	Input any
}

func (v Invalid) String() string {
	return fmt.Sprintf("Invalid(%s)", v.Kind)
}

// MarshalJSON implements json.Marshaler.
func (Invalid) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}
