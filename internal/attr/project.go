package attr

import "time"

// Projector is implemented by values that render themselves as plain data,
// such as nested records.
type Projector interface {
	Project() any
}

// Project renders v as plain data. Projectors are delegated to, times are
// formatted with TimeLayout and sequences are projected element by element.
// Every other value, including nil and degenerate values, is returned as is.
func Project(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case Projector:
		return val.Project()
	case time.Time:
		return val.UTC().Format(TimeLayout)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Project(elem)
		}
		return out
	}
	return v
}
