package compiler

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/schemata/internal/attr"
	"github.com/roach88/schemata/internal/model"
	"github.com/roach88/schemata/internal/store"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Store returns the store records of a model persist through. A nil
	// func, or a nil store, leaves the type without one.
	Store func(modelName string) (store.Store, error)

	// TypeOptions are extra options per model name, such as accessors.
	TypeOptions map[string][]model.TypeOption
}

var builtinTypes = map[string]attr.Type{
	TypeBool:   attr.Bool,
	TypeInt:    attr.Int,
	TypeFloat:  attr.Float,
	TypeString: attr.String,
	TypeTime:   attr.Time,
	TypeObject: attr.Object,
}

// Build turns specs into record types and registers them with reg, in spec
// order. Models may reference each other, or models already in reg,
// regardless of declaration order. Unknown type names and reference cycles
// fail with an *attr.ConfigurationError and nothing is registered.
func Build(specs []SchemaSpec, reg *model.Registry, opts BuildOptions) ([]*model.Type, error) {
	if reg == nil {
		return nil, &attr.ConfigurationError{Reason: "registry is required"}
	}

	if errs := ValidateAll(specs, reg.Has); len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	bySpec := make(map[string]SchemaSpec, len(specs))
	for _, spec := range specs {
		bySpec[spec.Name] = spec
	}

	built := make(map[string]*model.Type, len(specs))
	for _, name := range dependencyOrder(buildReferenceGraph(specs)) {
		t, err := buildType(bySpec[name], built, reg, opts)
		if err != nil {
			return nil, err
		}
		built[name] = t
	}

	types := make([]*model.Type, 0, len(specs))
	for _, spec := range specs {
		t := built[spec.Name]
		if err := reg.Register(t); err != nil {
			return nil, err
		}
		types = append(types, t)
		slog.Debug("model registered", "model", spec.Name, "fields", len(spec.Fields))
	}
	return types, nil
}

func buildType(spec SchemaSpec, built map[string]*model.Type, reg *model.Registry, opts BuildOptions) (*model.Type, error) {
	fields := make([]attr.Field, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		typ, err := resolveType(f.Type, built, reg)
		if err != nil {
			return nil, &attr.ConfigurationError{
				Field:  spec.Name + "." + f.Name,
				Reason: err.Error(),
			}
		}
		d, err := attr.New(attr.Options{Type: typ, Repeated: f.Repeated, Default: f.Default})
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", spec.Name, f.Name, err)
		}
		fields = append(fields, attr.F(f.Name, d))
	}

	schema, err := attr.NewSchema(fields...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	typeOpts := append([]model.TypeOption{}, opts.TypeOptions[spec.Name]...)
	if opts.Store != nil {
		s, err := opts.Store(spec.Name)
		if err != nil {
			return nil, fmt.Errorf("store for %s: %w", spec.Name, err)
		}
		if s != nil {
			typeOpts = append(typeOpts, model.WithStore(s))
		}
	}

	return model.Define(spec.Name, schema, typeOpts...)
}

func resolveType(name string, built map[string]*model.Type, reg *model.Registry) (attr.Type, error) {
	if t, ok := builtinTypes[name]; ok {
		return t, nil
	}
	if t, ok := built[name]; ok {
		return model.Nested(t), nil
	}
	if t, ok := reg.Lookup(name); ok {
		return model.Nested(t), nil
	}
	return attr.Type{}, fmt.Errorf("unknown type %q", name)
}

// validationFailure folds validation errors into one ConfigurationError.
// The individual errors stay reachable through errors.As on the joined
// cause.
func validationFailure(errs []ValidationError) error {
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return &BuildError{
		ConfigurationError: attr.ConfigurationError{Reason: errs[0].Error()},
		Errors:             errs,
		cause:              errors.Join(joined...),
	}
}

// BuildError reports the validation errors that stopped Build. It is an
// *attr.ConfigurationError for callers that only check the category.
type BuildError struct {
	attr.ConfigurationError
	Errors []ValidationError
	cause  error
}

func (e *BuildError) Error() string {
	if len(e.Errors) == 1 {
		return e.ConfigurationError.Error()
	}
	return fmt.Sprintf("%s (and %d more)", e.ConfigurationError.Error(), len(e.Errors)-1)
}

func (e *BuildError) Unwrap() []error {
	return []error{&e.ConfigurationError, e.cause}
}
