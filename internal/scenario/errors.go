package scenario

import (
	"errors"
	"fmt"
)

// Structural errors raised by SanityCheck.
var (
	// ErrStructural is wrapped by every StructuralError.
	ErrStructural = errors.New("scenario: structural error")

	// ErrMissingField indicates a required section or entry is absent.
	ErrMissingField = errors.New("scenario: missing required field")

	// ErrLengthMismatch indicates per-timestep arrays disagree in length or exceed the record length.
	ErrLengthMismatch = errors.New("scenario: inconsistent array lengths")

	// ErrUnresolvedEgo indicates metadata.sdc_id names no track.
	ErrUnresolvedEgo = errors.New("scenario: sdc id does not resolve to a track")

	ErrInvalidLength = errors.New("scenario: invalid record length")
)

// StructuralError identifies the first invariant a record violates.
type StructuralError struct {
	Field   string
	Reason  string
	Wrapped error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("scenario: %s: %s", e.Field, e.Reason)
}

func (e *StructuralError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrStructural}
	}
	return []error{ErrStructural, e.Wrapped}
}

func structural(kind error, field, format string, args ...any) error {
	return &StructuralError{Field: field, Reason: fmt.Sprintf(format, args...), Wrapped: kind}
}
