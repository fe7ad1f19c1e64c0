// Package attr provides attribute descriptors and the coercion engine for
// schema-typed records.
//
// A Descriptor describes one schema field: its Type, whether it repeats and
// its default value. MakeValue turns arbitrary input into a value of the
// declared type; MakeDefault is the "no input supplied" path and is the only
// one that consults the default.
//
// # Types
//
// Type is a closed tagged variant resolved when a descriptor is built:
//
//	attr.Bool, attr.Int, attr.Float, attr.String   // primitives
//	attr.Time                                       // time.Time
//	attr.Object                                     // plain data, passed through
//	attr.Composite(name, construct)                 // constructor-backed
//
// # Permissive Coercion
//
// Primitive conversion never fails. A string that does not parse as a number
// becomes NaN for Float and Invalid for Int; the degenerate value is carried
// as data. Only configuration problems (an unresolvable Type, a malformed
// Schema) and composite constructor failures are reported as errors.
//
// # Go Representation
//
//	Bool   -> bool
//	Int    -> int64
//	Float  -> float64
//	String -> string
//	Time   -> time.Time
//	Object -> any non-nil value
//	repeated fields -> []any
//
// nil is the absent value for every type.
package attr
