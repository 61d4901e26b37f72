package compare

import (
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/scenecheck/internal/coords"
	"github.com/san-kum/scenecheck/internal/scenario"
)

type RuleKind int

const (
	// Numeric compares floats at a fixed number of decimals.
	Numeric RuleKind = iota
	// Exact requires equality; floats must match bit for bit.
	Exact
	// Excluded fields are never compared.
	Excluded
)

func (k RuleKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Exact:
		return "exact"
	case Excluded:
		return "excluded"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

type FieldRule struct {
	Kind     RuleKind
	Decimals int
	// Planar restricts position-like fields to their x and y components.
	Planar bool
	// Angular compares numeric values by their wrapped difference, so two
	// headings on either side of the ±π seam are close.
	Angular bool
}

// Tolerance is the per-field comparison table. Control echo fields that have
// no rule of their own fall back to the scenario.FieldControls rule; any other
// unknown field is compared exactly.
type Tolerance struct {
	Fields             map[string]FieldRule
	RequireEqualLength bool
}

const (
	DefaultPositionDecimals = 4
	DefaultHeadingDecimals  = 4
	DefaultVelocityDecimals = 1
)

func DefaultTolerance() Tolerance {
	return Tolerance{
		Fields: map[string]FieldRule{
			scenario.FieldPosition: {Kind: Numeric, Decimals: DefaultPositionDecimals, Planar: true},
			scenario.FieldHeading:  {Kind: Numeric, Decimals: DefaultHeadingDecimals, Angular: true},
			scenario.FieldVelocity: {Kind: Numeric, Decimals: DefaultVelocityDecimals},
			scenario.FieldSize:     {Kind: Numeric, Decimals: DefaultPositionDecimals},
			scenario.FieldValid:    {Kind: Exact},
			scenario.FieldControls: {Kind: Excluded},
			scenario.FieldType:     {Kind: Exact},
			scenario.FieldPolyline: {Kind: Numeric, Decimals: DefaultPositionDecimals, Planar: true},
			scenario.FieldState:    {Kind: Exact},
		},
	}
}

// StrictTolerance is the equal-length, exact-equality policy: every field,
// control echoes included, must match bit for bit.
func StrictTolerance() Tolerance {
	t := Tolerance{Fields: make(map[string]FieldRule), RequireEqualLength: true}
	for _, f := range []string{
		scenario.FieldPosition, scenario.FieldHeading, scenario.FieldVelocity, scenario.FieldSize,
		scenario.FieldValid, scenario.FieldControls, scenario.FieldType, scenario.FieldPolyline, scenario.FieldState,
	} {
		t.Fields[f] = FieldRule{Kind: Exact}
	}
	return t
}

func (t Tolerance) Rule(field string) FieldRule {
	if r, ok := t.Fields[field]; ok {
		return r
	}
	if isControl(field) {
		if r, ok := t.Fields[scenario.FieldControls]; ok {
			return r
		}
	}
	return FieldRule{Kind: Exact}
}

// With returns a copy of t with the rule for field replaced.
func (t Tolerance) With(field string, r FieldRule) Tolerance {
	c := Tolerance{Fields: maps.Clone(t.Fields), RequireEqualLength: t.RequireEqualLength}
	if c.Fields == nil {
		c.Fields = make(map[string]FieldRule)
	}
	c.Fields[field] = r
	return c
}

func isControl(field string) bool {
	switch field {
	case scenario.FieldPosition, scenario.FieldHeading, scenario.FieldVelocity,
		scenario.FieldSize, scenario.FieldValid, scenario.FieldType,
		scenario.FieldPolyline, scenario.FieldState:
		return false
	}
	return true
}

// almostEqual reports whether |a-b| < 1.5 * 10^-decimals. NaNs compare equal
// to each other. Negative decimals demand exact equality.
func almostEqual(a, b float64, decimals int) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	if decimals < 0 {
		return a == b
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) < 1.5*math.Pow10(-decimals)
}

func (r FieldRule) equal(a, b float64) bool {
	switch r.Kind {
	case Excluded:
		return true
	case Exact:
		return almostEqual(a, b, -1)
	default:
		if r.Angular && finite(a) && finite(b) {
			return almostEqual(coords.AngleDiff(a, b), 0, r.Decimals)
		}
		return almostEqual(a, b, r.Decimals)
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
