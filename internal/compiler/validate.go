package compiler

import (
	"fmt"
	"regexp"
)

// Validation error codes (E100-E199)
const (
	ErrModelNameInvalid = "E101" // model name missing or not an identifier
	ErrFieldNameInvalid = "E102" // field name missing or not an identifier
	ErrDuplicateField   = "E103" // field declared twice
	ErrFieldTypeMissing = "E104" // field has no type
	ErrInvalidTypeName  = "E105" // type is neither built-in nor a model name
	ErrRepeatedDefault  = "E106" // repeated fields start empty
	ErrDefaultNotScalar = "E107" // default must be a string, number or bool
	ErrDuplicateModel   = "E110" // model declared twice
	ErrModelCycle       = "E111" // models reference each other in a cycle
	ErrUnknownModel     = "E112" // reference to an undeclared model
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a single spec. It returns all errors found rather than
// stopping at the first one. Model references are not resolved here; see
// ValidateAll.
func Validate(spec SchemaSpec) []ValidationError {
	var errs []ValidationError

	if !identifierPattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid model name %q", spec.Name),
			Code:    ErrModelNameInvalid,
		})
	}

	seen := make(map[string]bool)
	for i, f := range spec.Fields {
		path := fmt.Sprintf("%s.fields[%d]", spec.Name, i)

		if !identifierPattern.MatchString(f.Name) {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("invalid field name %q", f.Name),
				Code:    ErrFieldNameInvalid,
			})
		}
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateField,
			})
		}
		seen[f.Name] = true

		switch {
		case f.Type == "":
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("field %q has no type", f.Name),
				Code:    ErrFieldTypeMissing,
			})
		case !IsBuiltin(f.Type) && !identifierPattern.MatchString(f.Type):
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
				Code:    ErrInvalidTypeName,
			})
		}

		if f.Default == nil {
			continue
		}
		if f.Repeated {
			errs = append(errs, ValidationError{
				Field:   path + ".default",
				Message: fmt.Sprintf("repeated field %q cannot have a default", f.Name),
				Code:    ErrRepeatedDefault,
			})
			continue
		}
		if !isScalar(f.Default) {
			errs = append(errs, ValidationError{
				Field:   path + ".default",
				Message: fmt.Sprintf("default for %q must be a scalar, got %T", f.Name, f.Default),
				Code:    ErrDefaultNotScalar,
			})
		}
	}

	return errs
}

// ValidateAll validates every spec and the references between them.
// known reports names declared outside specs, such as models already
// registered; it may be nil.
func ValidateAll(specs []SchemaSpec, known func(name string) bool) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool)
	for _, spec := range specs {
		errs = append(errs, Validate(spec)...)
		if declared[spec.Name] || (known != nil && known(spec.Name)) {
			errs = append(errs, ValidationError{
				Field:   spec.Name,
				Message: fmt.Sprintf("duplicate model name: %q", spec.Name),
				Code:    ErrDuplicateModel,
			})
		}
		declared[spec.Name] = true
	}

	for _, spec := range specs {
		for _, f := range spec.Fields {
			if f.Type == "" || IsBuiltin(f.Type) || declared[f.Type] {
				continue
			}
			if known != nil && known(f.Type) {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.%s", spec.Name, f.Name),
				Message: fmt.Sprintf("unknown type %q", f.Type),
				Code:    ErrUnknownModel,
			})
		}
	}

	for _, cycle := range FindCycles(specs) {
		errs = append(errs, ValidationError{
			Field:   cycle.Path[0],
			Message: cycle.Message,
			Code:    ErrModelCycle,
		})
	}

	return errs
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return true
	}
	return false
}
