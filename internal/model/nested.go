package model

import (
	"fmt"

	"github.com/roach88/schemata/internal/attr"
)

// Nested returns a composite attr.Type for fields holding records of t.
// Records of t pass through unchanged; plain objects are built into new
// records with New. A nil *Record is the absent value.
func Nested(t *Type) attr.Type {
	return attr.CompositeFunc(t.Name(),
		func(v any) bool {
			r, ok := v.(*Record)
			return ok && r != nil && r.typ == t
		},
		func(v any) (any, error) {
			switch val := v.(type) {
			case map[string]any:
				return New(t, val)
			case *Record:
				if val == nil {
					return nil, nil
				}
				return nil, fmt.Errorf("expected %s record, got %s", t.Name(), val.typ.Name())
			}
			return nil, fmt.Errorf("expected object for %s, got %T", t.Name(), v)
		},
	)
}
