package model

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/canonical"
)

// Record is an instance of a record Type.
//
// Records are not safe for concurrent use.
type Record struct {
	typ    *Type
	values map[string]any
	extras map[string]any
}

// New builds a record of type t from data.
//
// Each schema field present in data is coerced with MakeValue, so an
// explicit nil stays nil. Fields missing from data take MakeDefault. Keys
// of data outside the schema are ignored.
func New(t *Type, data map[string]any) (*Record, error) {
	if t == nil || !t.defined {
		return nil, &AbstractInstantiationError{Name: "model.Type"}
	}
	if t.schema == nil {
		return nil, &SchemaRequiredError{Type: t.name}
	}

	values := make(map[string]any, t.schema.Len())
	for _, f := range t.schema.Fields() {
		var (
			v   any
			err error
		)
		if input, ok := data[f.Name]; ok {
			v, err = f.Descriptor.MakeValue(input)
		} else {
			v, err = f.Descriptor.MakeDefault()
		}
		if err != nil {
			return nil, &FieldError{Type: t.name, Field: f.Name, Err: err}
		}
		values[f.Name] = v
	}

	return &Record{
		typ:    t,
		values: values,
		extras: make(map[string]any),
	}, nil
}

// Type returns the record's type.
func (r *Record) Type() *Type { return r.typ }

// Get returns the value of name. Explicit accessors come first, then schema
// fields, then instance properties. Unknown names yield nil.
func (r *Record) Get(name string) any {
	v, _ := r.Lookup(name)
	return v
}

// Lookup is Get that also reports whether name is known to the record.
func (r *Record) Lookup(name string) (any, bool) {
	if a, ok := r.typ.accessors[name]; ok {
		return a.Get(r), true
	}
	if r.typ.schema.Has(name) {
		return r.values[name], true
	}
	v, ok := r.extras[name]
	return v, ok
}

// Set writes v to name without coercion, routed like Get. Read-only
// accessors fail with ErrReadOnly.
func (r *Record) Set(name string, v any) error {
	if a, ok := r.typ.accessors[name]; ok {
		if a.Set == nil {
			return fmt.Errorf("%s.%s: %w", r.typ.name, name, ErrReadOnly)
		}
		return a.Set(r, v)
	}
	r.SetField(name, v)
	return nil
}

// Field reads the backing store (or instance property) directly, skipping
// accessors. Accessor implementations use it to reach the fields they wrap.
func (r *Record) Field(name string) any {
	if r.typ.schema.Has(name) {
		return r.values[name]
	}
	return r.extras[name]
}

// SetField writes the backing store (or instance property) directly,
// skipping accessors and coercion.
func (r *Record) SetField(name string, v any) {
	if r.typ.schema.Has(name) {
		r.values[name] = v
		return
	}
	r.extras[name] = v
}

// SetProperties writes every entry of data as given. Values are not coerced;
// callers bulk-updating from untyped input should use Assign.
func (r *Record) SetProperties(data map[string]any) {
	for k, v := range data {
		r.SetField(k, v)
	}
}

// Assign coerces schema fields in data through their descriptors and writes
// them, with the remaining keys stored as instance properties. Nothing is
// written unless every field coerces.
func (r *Record) Assign(data map[string]any) error {
	coerced := make(map[string]any, len(data))
	for _, k := range slices.Sorted(maps.Keys(data)) {
		d, ok := r.typ.schema.Lookup(k)
		if !ok {
			coerced[k] = data[k]
			continue
		}
		v, err := d.MakeValue(data[k])
		if err != nil {
			return &FieldError{Type: r.typ.name, Field: k, Err: err}
		}
		coerced[k] = v
	}
	r.SetProperties(coerced)
	return nil
}

// ToJSON returns the record's plain data projection: one entry per schema
// field, read through accessors and projected with attr.Project. Fields
// without a value are present with a nil value.
func (r *Record) ToJSON() map[string]any {
	out := make(map[string]any, r.typ.schema.Len())
	for _, name := range r.typ.schema.Names() {
		out[name] = attr.Project(r.Get(name))
	}
	return out
}

// Project implements attr.Projector so records nest inside other records.
// A nil record projects as nil.
func (r *Record) Project() any {
	if r == nil {
		return nil
	}
	return r.ToJSON()
}

// MarshalJSON writes the projection with keys in schema order.
func (r *Record) MarshalJSON() ([]byte, error) {
	return canonical.MarshalOrdered(r.typ.schema.Names(), r.ToJSON())
}

func (r *Record) String() string {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("%s{<%v>}", r.typ.name, err)
	}
	return r.typ.name + string(data)
}

// Value returns the value of name as a T.
func Value[T any](r *Record, name string) (T, bool) {
	v, ok := r.Get(name).(T)
	return v, ok
}
