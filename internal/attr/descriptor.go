package attr

// Options configures New.
type Options struct {
	// Type is required.
	Type Type

	// Repeated makes the attribute an ordered sequence of Type.
	Repeated bool

	// Default is used by MakeDefault. nil means absent.
	Default any
}

// Descriptor describes one schema field. It is immutable once built.
type Descriptor struct {
	typ      Type
	repeated bool
	def      any
}

// New builds a descriptor, failing with a ConfigurationError when
// opts.Type cannot produce values.
func New(opts Options) (*Descriptor, error) {
	if err := opts.Type.resolve(); err != nil {
		return nil, err
	}
	return &Descriptor{
		typ:      opts.Type,
		repeated: opts.Repeated,
		def:      opts.Default,
	}, nil
}

// Option adjusts the options used by Attr.
type Option func(*Options)

// Repeated marks the attribute as a sequence.
func Repeated() Option {
	return func(o *Options) { o.Repeated = true }
}

// Default sets the default value.
func Default(v any) Option {
	return func(o *Options) { o.Default = v }
}

// Attr is the shorthand used in schema declarations:
//
//	attr.Attr(attr.String, attr.Default("Male"))
//	attr.Attr(attr.String, attr.Repeated())
//
// It panics with the *ConfigurationError New would return, so a bad
// declaration fails when the schema is defined rather than on first use.
func Attr(t Type, opts ...Option) *Descriptor {
	o := Options{Type: t}
	for _, opt := range opts {
		opt(&o)
	}
	d, err := New(o)
	if err != nil {
		panic(err)
	}
	return d
}

// Type returns the descriptor's coercion strategy.
func (d *Descriptor) Type() Type { return d.typ }

// IsRepeated reports whether the attribute holds a sequence.
func (d *Descriptor) IsRepeated() bool { return d.repeated }

// DefaultValue returns the configured default, nil when absent.
func (d *Descriptor) DefaultValue() any { return d.def }

// MakeDefault returns the value used when no input was supplied.
//
// Scalar attributes coerce the default. Repeated attributes always start
// as an empty sequence; their default is never consulted.
func (d *Descriptor) MakeDefault() (any, error) {
	if d.repeated {
		return []any{}, nil
	}
	return d.typ.coerce(d.def)
}

// MakeValue coerces input. An explicit nil stays nil for scalar attributes
// and never falls back to the default; use MakeDefault for that.
//
// Repeated attributes turn nil into an empty sequence and coerce each
// element of any Go slice or array independently. Other input fails with a
// *SequenceError.
func (d *Descriptor) MakeValue(input any) (any, error) {
	if !d.repeated {
		return d.typ.coerce(input)
	}

	if input == nil {
		return []any{}, nil
	}
	seq, ok := asSequence(input)
	if !ok {
		return nil, &SequenceError{Input: input}
	}

	out := make([]any, len(seq))
	for i, elem := range seq {
		v, err := d.typ.coerce(elem)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
