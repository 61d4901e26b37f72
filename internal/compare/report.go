package compare

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind string

const (
	IdentitySetMismatch Kind = "identity_set_mismatch"
	LengthMismatch      Kind = "length_mismatch"
	ToleranceExceeded   Kind = "tolerance_exceeded"
	TypeMismatch        Kind = "type_mismatch"
	MissingField        Kind = "missing_field"
)

func (k Kind) sentinel() error {
	switch k {
	case IdentitySetMismatch:
		return ErrIdentitySetMismatch
	case LengthMismatch:
		return ErrLengthMismatch
	case ToleranceExceeded:
		return ErrToleranceExceeded
	case TypeMismatch:
		return ErrTypeMismatch
	default:
		return ErrMissingField
	}
}

// NoTimestep marks a mismatch that is not tied to a single timestep.
const NoTimestep = -1

// Mismatch locates one difference between records a and b. Want holds the
// value from a, Got the value from b.
type Mismatch struct {
	Kind       Kind
	Collection string
	ID         string
	Field      string
	Timestep   int
	Want       string
	Got        string
	Detail     string
}

func (m Mismatch) String() string {
	var b strings.Builder
	b.WriteString(string(m.Kind))
	b.WriteByte(' ')
	b.WriteString(m.Collection)
	if m.ID != "" {
		b.WriteByte('/')
		b.WriteString(m.ID)
	}
	if m.Field != "" {
		b.WriteByte(' ')
		b.WriteString(m.Field)
	}
	if m.Timestep != NoTimestep {
		fmt.Fprintf(&b, " t=%d", m.Timestep)
	}
	if m.Want != "" || m.Got != "" {
		fmt.Fprintf(&b, ": want %s got %s", m.Want, m.Got)
	}
	if m.Detail != "" {
		b.WriteString(": ")
		b.WriteString(m.Detail)
	}
	return b.String()
}

type Report struct {
	Mode       Mode
	A, B       string
	Steps      int
	Mismatches []Mismatch
}

func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Err returns nil for a clean report, a *ToleranceError when any value fell
// outside its tolerance, and a *MismatchError otherwise.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	for _, m := range r.Mismatches {
		if m.Kind == ToleranceExceeded {
			return &ToleranceError{Mismatches: r.Mismatches}
		}
	}
	return &MismatchError{Mismatches: r.Mismatches}
}

// Count returns the number of mismatches of kind k.
func (r *Report) Count(k Kind) int {
	n := 0
	for _, m := range r.Mismatches {
		if m.Kind == k {
			n++
		}
	}
	return n
}

// Filter returns the mismatches recorded for one collection entry.
func (r *Report) Filter(collection, id string) []Mismatch {
	var out []Mismatch
	for _, m := range r.Mismatches {
		if m.Collection == collection && m.ID == id {
			out = append(out, m)
		}
	}
	return out
}

// Format renders the report as stable text, one mismatch per line.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compare %s vs %s (%s, %d steps): ", r.A, r.B, r.Mode, r.Steps)
	if r.OK() {
		b.WriteString("ok\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d mismatches\n", len(r.Mismatches))
	for _, m := range r.Mismatches {
		b.WriteString("  ")
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Report) add(m Mismatch) {
	r.Mismatches = append(r.Mismatches, m)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatVec(vs []float64) string {
	if len(vs) == 1 {
		return formatFloat(vs[0])
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
