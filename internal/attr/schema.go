package attr

import "fmt"

// Field pairs a field name with its descriptor for ordered schema
// construction.
type Field struct {
	Name       string
	Descriptor *Descriptor
}

// F is a shorthand for Field.
//
//	attr.NewSchema(
//	    attr.F("firstName", attr.Attr(attr.String)),
//	    attr.F("aliases", attr.Attr(attr.String, attr.Repeated())),
//	)
func F(name string, d *Descriptor) Field {
	return Field{Name: name, Descriptor: d}
}

// Schema maps field names to descriptors, remembering declaration order.
type Schema struct {
	names  []string
	fields map[string]*Descriptor
}

// NewSchema builds a schema. Names must be non-empty and unique and every
// field needs a descriptor.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{
		names:  make([]string, 0, len(fields)),
		fields: make(map[string]*Descriptor, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("field %d has no name", i)}
		}
		if f.Descriptor == nil {
			return nil, &ConfigurationError{Field: f.Name, Reason: "descriptor is required"}
		}
		if _, dup := s.fields[f.Name]; dup {
			return nil, &ConfigurationError{Field: f.Name, Reason: "declared twice"}
		}
		s.names = append(s.names, f.Name)
		s.fields[f.Name] = f.Descriptor
	}
	return s, nil
}

// MustSchema is NewSchema for package-level declarations; it panics on error.
func MustSchema(fields ...Field) *Schema {
	s, err := NewSchema(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.names) }

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (*Descriptor, bool) {
	d, ok := s.fields[name]
	return d, ok
}

// Has reports whether name is a schema field.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Fields returns the (name, descriptor) pairs in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.names))
	for i, name := range s.names {
		out[i] = Field{Name: name, Descriptor: s.fields[name]}
	}
	return out
}
