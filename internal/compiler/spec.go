package compiler

// Built-in type names a field may declare. Any other name refers to a
// model.
const (
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeString = "string"
	TypeTime   = "time"
	TypeObject = "object"
)

// SchemaSpec is the compiled form of one model declaration. It is plain
// data and can be written as JSON and read back.
type SchemaSpec struct {
	Name   string      `json:"name"`
	Fields []FieldSpec `json:"fields"`
}

// FieldSpec describes one schema field.
type FieldSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Repeated bool   `json:"repeated,omitempty"`

	// Default is a string, int64, float64 or bool, nil when absent.
	Default any `json:"default,omitempty"`
}

// IsBuiltin reports whether name is a built-in type rather than a model
// reference.
func IsBuiltin(name string) bool {
	switch name {
	case TypeBool, TypeInt, TypeFloat, TypeString, TypeTime, TypeObject:
		return true
	}
	return false
}

// References returns the model names the spec's fields refer to, in field
// order and without duplicates.
func (s SchemaSpec) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, f := range s.Fields {
		if IsBuiltin(f.Type) || f.Type == "" || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		refs = append(refs, f.Type)
	}
	return refs
}
