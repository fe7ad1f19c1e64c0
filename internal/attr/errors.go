package attr

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a descriptor or schema that cannot be used,
// such as a descriptor built without a resolvable Type.
type ConfigurationError struct {
	// Field is the schema field involved, if known.
	Field string

	// Reason is a human-readable description.
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("attr: field %q: %s", e.Field, e.Reason)
	}
	return "attr: " + e.Reason
}

// IsConfigurationError reports whether err is, or wraps, a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// SequenceError is returned when a repeated descriptor receives input that
// is not a sequence.
type SequenceError struct {
	Input any
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("attr: repeated attribute expects a sequence, got %T", e.Input)
}
