package grid

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every validation failure and returned by Get on a
// grid that was never built.
var ErrInvalid = errors.New("invalid calendar grid")

// ValidationError describes a rejected configuration value.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("grid: invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field string, value any, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
