package compare

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIdentitySetMismatch = errors.New("compare: identifier sets differ")
	ErrLengthMismatch      = errors.New("compare: sequence lengths differ")
	ErrToleranceExceeded   = errors.New("compare: values differ beyond tolerance")
	ErrTypeMismatch        = errors.New("compare: object types differ")
	ErrMissingField        = errors.New("compare: field present in only one record")
	ErrInvalidMode         = errors.New("compare: invalid mode")
)

// RecordError reports that record a or b failed its sanity check, so no
// comparison took place.
type RecordError struct {
	Which string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("compare: record %s: %v", e.Which, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ToleranceError aggregates every mismatch of a report that has at least one
// value outside its tolerance.
type ToleranceError struct {
	Mismatches []Mismatch
}

func (e *ToleranceError) Error() string {
	return summarize(e.Mismatches)
}

func (e *ToleranceError) Unwrap() []error {
	return kindErrors(e.Mismatches)
}

// MismatchError aggregates the mismatches of a report with no tolerance
// violations, e.g. only identity set or length differences.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	return summarize(e.Mismatches)
}

func (e *MismatchError) Unwrap() []error {
	return kindErrors(e.Mismatches)
}

func summarize(ms []Mismatch) string {
	if len(ms) == 0 {
		return "compare: no mismatches"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "compare: %d mismatch", len(ms))
	if len(ms) != 1 {
		b.WriteString("es")
	}
	b.WriteString(", first: ")
	b.WriteString(ms[0].String())
	return b.String()
}

func kindErrors(ms []Mismatch) []error {
	seen := make(map[Kind]bool)
	var errs []error
	for _, m := range ms {
		if seen[m.Kind] {
			continue
		}
		seen[m.Kind] = true
		errs = append(errs, m.Kind.sentinel())
	}
	return errs
}
