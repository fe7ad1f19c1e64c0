package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileModels compiles every declaration under the top-level model
// struct, in declaration order. A value without one yields no specs.
//
//	model: Person: {
//		firstName: string
//		sex:       *"Male" | string
//		aliases:   [...string]
//		dob:       string @attr(time)
//	}
func CompileModels(v cue.Value) ([]SchemaSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return []SchemaSpec{}, nil
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	specs := []SchemaSpec{}
	for iter.Next() {
		spec, err := CompileModel(iter.Value())
		if err != nil {
			return nil, err
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// CompileModel compiles a single model struct. The model name is the last
// label of the value's path.
func CompileModel(v cue.Value) (*SchemaSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &SchemaSpec{Fields: []FieldSpec{}}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].Unquoted()
	}
	if spec.Name == "" {
		return nil, &CompileError{
			Field:   "model",
			Message: "model name is required",
			Pos:     v.Pos(),
		}
	}

	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "model." + spec.Name,
			Message: "model must be a struct",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		field, err := compileField(spec.Name, iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Fields = append(spec.Fields, field)
	}

	return spec, nil
}

// compileField derives one FieldSpec. An @attr(name) attribute overrides
// the type inferred from the CUE kind.
func compileField(modelName, name string, v cue.Value) (FieldSpec, error) {
	path := fmt.Sprintf("model.%s.%s", modelName, name)
	field := FieldSpec{Name: name}

	elem := v
	if v.IncompleteKind() == cue.ListKind {
		field.Repeated = true
		elem = v.LookupPath(cue.MakePath(cue.AnyIndex))
		if !elem.Exists() {
			return field, &CompileError{
				Field:   path,
				Message: "list fields need an element type, e.g. [...string]",
				Pos:     v.Pos(),
			}
		}
	}

	if a := v.Attribute("attr"); a.Err() == nil {
		typ, err := a.String(0)
		if err != nil || typ == "" {
			return field, &CompileError{
				Field:   path,
				Message: "@attr needs a type name",
				Pos:     v.Pos(),
			}
		}
		field.Type = typ
	} else {
		typ, err := typeName(elem)
		if err != nil {
			err.Field = path
			return field, err
		}
		field.Type = typ
	}

	if field.Repeated {
		return field, nil
	}

	if d, ok := v.Default(); ok {
		def, err := defaultValue(d)
		if err != nil {
			err.Field = path
			return field, err
		}
		field.Default = def
	}

	return field, nil
}

// typeName maps a CUE kind to a built-in type name.
func typeName(v cue.Value) (string, *CompileError) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return TypeString, nil
	case cue.IntKind:
		return TypeInt, nil
	case cue.FloatKind, cue.NumberKind:
		return TypeFloat, nil
	case cue.BoolKind:
		return TypeBool, nil
	case cue.StructKind:
		return TypeObject, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// defaultValue decodes a concrete scalar default.
func defaultValue(d cue.Value) (any, *CompileError) {
	var (
		out any
		err error
	)
	switch d.Kind() {
	case cue.StringKind:
		out, err = d.String()
	case cue.IntKind:
		out, err = d.Int64()
	case cue.FloatKind:
		out, err = d.Float64()
	case cue.BoolKind:
		out, err = d.Bool()
	case cue.NullKind:
		return nil, nil
	default:
		return nil, &CompileError{
			Field:   "default",
			Message: fmt.Sprintf("default must be a scalar, got %v", d.Kind()),
			Pos:     d.Pos(),
		}
	}
	if err != nil {
		return nil, &CompileError{Field: "default", Message: err.Error(), Pos: d.Pos()}
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
