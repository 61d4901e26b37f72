package compare

import (
	"fmt"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/scenario"
)

type Mode string

const (
	EgoOnly   Mode = "ego_only"
	FullScene Mode = "full_scene"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case EgoOnly, FullScene:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidMode, s, EgoOnly, FullScene)
}

const (
	collRecord   = "record"
	collTracks   = scenario.SectionTracks
	collFeatures = scenario.SectionMapFeatures
	collDynamic  = scenario.SectionDynamicMapStates
)

// Compare checks that b reproduces a under mode and tol. A non-nil error means
// one of the records is structurally invalid; differences between valid
// records are reported, not returned.
func Compare(a, b *scenario.Record, mode Mode, tol Tolerance) (*Report, error) {
	if mode != EgoOnly && mode != FullScene {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err := scenario.SanityCheck(a); err != nil {
		return nil, &RecordError{Which: "a", Err: err}
	}
	if err := scenario.SanityCheck(b); err != nil {
		return nil, &RecordError{Which: "b", Err: err}
	}

	c := &comparer{
		tol: tol,
		rep: &Report{Mode: mode, A: a.Metadata.ID, B: b.Metadata.ID},
	}
	c.steps = c.lengths(a.Length, b.Length)
	c.rep.Steps = c.steps

	switch mode {
	case EgoOnly:
		id := a.Metadata.SDCID
		if b.Metadata.SDCID != id {
			id = a.Metadata.SDCID + "|" + b.Metadata.SDCID
		}
		c.track(id, a.SDCTrack(), b.SDCTrack())
	case FullScene:
		c.tracks(a, b)
		c.features(a, b)
		c.dynamic(a, b)
	}
	return c.rep, nil
}

type comparer struct {
	tol   Tolerance
	rep   *Report
	steps int
}

// lengths applies the length policy and returns the number of timesteps to
// compare.
func (c *comparer) lengths(la, lb int) int {
	switch {
	case c.tol.RequireEqualLength && la != lb:
		c.rep.add(Mismatch{
			Kind: LengthMismatch, Collection: collRecord, Field: scenario.SectionLength,
			Timestep: NoTimestep, Want: strconv.Itoa(la), Got: strconv.Itoa(lb),
		})
	case la < lb:
		c.rep.add(Mismatch{
			Kind: LengthMismatch, Collection: collRecord, Field: scenario.SectionLength,
			Timestep: NoTimestep, Want: strconv.Itoa(la), Got: strconv.Itoa(lb),
			Detail: "record a is shorter than b",
		})
	}
	return min(la, lb)
}

// keys reports identifiers present in only one of the two sorted id lists and
// returns the shared ones.
func (c *comparer) keys(coll string, ida, idb []string) []string {
	var shared []string
	for _, id := range ida {
		if _, ok := slices.BinarySearch(idb, id); ok {
			shared = append(shared, id)
			continue
		}
		c.rep.add(Mismatch{Kind: IdentitySetMismatch, Collection: coll, ID: id, Timestep: NoTimestep, Detail: "missing from b"})
	}
	for _, id := range idb {
		if _, ok := slices.BinarySearch(ida, id); !ok {
			c.rep.add(Mismatch{Kind: IdentitySetMismatch, Collection: coll, ID: id, Timestep: NoTimestep, Detail: "missing from a"})
		}
	}
	return shared
}

func (c *comparer) tracks(a, b *scenario.Record) {
	for _, id := range c.keys(collTracks, a.TrackIDs(), b.TrackIDs()) {
		c.track(id, a.Tracks[id], b.Tracks[id])
	}
}

func (c *comparer) kind(coll, id string, ta, tb scenario.ObjectType) {
	if c.tol.Rule(scenario.FieldType).Kind == Excluded || ta == tb {
		return
	}
	c.rep.add(Mismatch{
		Kind: TypeMismatch, Collection: coll, ID: id, Field: scenario.FieldType,
		Timestep: NoTimestep, Want: string(ta), Got: string(tb),
	})
}

// span clips both sequence lengths to the compared window and reports a
// length mismatch when they still disagree.
func (c *comparer) span(coll, id, field string, na, nb int) int {
	na, nb = min(na, c.steps), min(nb, c.steps)
	if na != nb {
		c.rep.add(Mismatch{
			Kind: LengthMismatch, Collection: coll, ID: id, Field: field,
			Timestep: NoTimestep, Want: strconv.Itoa(na), Got: strconv.Itoa(nb),
		})
	}
	return min(na, nb)
}

func (c *comparer) track(id string, ta, tb *scenario.Track) {
	c.kind(collTracks, id, ta.Type, tb.Type)
	sa, sb := ta.State, tb.State
	n := c.span(collTracks, id, "state", sa.Len(), sb.Len())

	for _, field := range []string{
		scenario.FieldPosition, scenario.FieldHeading, scenario.FieldVelocity,
		scenario.FieldSize, scenario.FieldValid,
	} {
		rule := c.tol.Rule(field)
		if rule.Kind == Excluded {
			continue
		}
		c.series(collTracks, id, field, rule, n, accessor(sa, field, rule.Planar), accessor(sb, field, rule.Planar))
	}

	names := sa.ControlNames()
	for _, name := range sb.ControlNames() {
		if _, ok := slices.BinarySearch(names, name); !ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	for _, name := range names {
		rule := c.tol.Rule(name)
		if rule.Kind == Excluded {
			continue
		}
		va, okA := sa.Controls[name]
		vb, okB := sb.Controls[name]
		if !okA || !okB {
			detail := "missing from b"
			if !okA {
				detail = "missing from a"
			}
			c.rep.add(Mismatch{Kind: MissingField, Collection: collTracks, ID: id, Field: name, Timestep: NoTimestep, Detail: detail})
			continue
		}
		m := min(n, len(va), len(vb))
		c.series(collTracks, id, name, rule, m, scalars(va), scalars(vb))
	}
}

// series compares the first n timesteps of two component accessors.
func (c *comparer) series(coll, id, field string, rule FieldRule, n int, fa, fb func(int) []float64) {
	for t := 0; t < n; t++ {
		va, vb := fa(t), fb(t)
		for k := range va {
			if !rule.equal(va[k], vb[k]) {
				c.rep.add(Mismatch{
					Kind: ToleranceExceeded, Collection: coll, ID: id, Field: field,
					Timestep: t, Want: formatVec(va), Got: formatVec(vb),
				})
				break
			}
		}
	}
}

func accessor(s scenario.TrackState, field string, planar bool) func(int) []float64 {
	switch field {
	case scenario.FieldPosition:
		return points(s.Position, planar)
	case scenario.FieldHeading:
		return scalars(s.Heading)
	case scenario.FieldVelocity:
		return func(t int) []float64 { return []float64{s.Velocity[t].X, s.Velocity[t].Y} }
	case scenario.FieldSize:
		return points(s.Size, planar)
	case scenario.FieldValid:
		return func(t int) []float64 {
			if s.Valid[t] {
				return []float64{1}
			}
			return []float64{0}
		}
	}
	return scalars(s.Controls[field])
}

func scalars(vs []float64) func(int) []float64 {
	return func(t int) []float64 { return []float64{vs[t]} }
}

func points(vs []r3.Vec, planar bool) func(int) []float64 {
	return func(t int) []float64 {
		p := vs[t]
		if planar {
			return []float64{p.X, p.Y}
		}
		return []float64{p.X, p.Y, p.Z}
	}
}

func (c *comparer) features(a, b *scenario.Record) {
	rule := c.tol.Rule(scenario.FieldPolyline)
	for _, id := range c.keys(collFeatures, a.MapFeatureIDs(), b.MapFeatureIDs()) {
		fa, fb := a.MapFeatures[id], b.MapFeatures[id]
		c.kind(collFeatures, id, fa.Type, fb.Type)
		if rule.Kind == Excluded {
			continue
		}
		// Polylines are static; their point counts must agree exactly.
		if len(fa.Polyline) != len(fb.Polyline) {
			c.rep.add(Mismatch{
				Kind: LengthMismatch, Collection: collFeatures, ID: id, Field: scenario.FieldPolyline,
				Timestep: NoTimestep, Want: strconv.Itoa(len(fa.Polyline)), Got: strconv.Itoa(len(fb.Polyline)),
			})
			continue
		}
		pa, pb := points(fa.Polyline, rule.Planar), points(fb.Polyline, rule.Planar)
		for i := range fa.Polyline {
			va, vb := pa(i), pb(i)
			for k := range va {
				if !rule.equal(va[k], vb[k]) {
					c.rep.add(Mismatch{
						Kind: ToleranceExceeded, Collection: collFeatures, ID: id, Field: scenario.FieldPolyline,
						Timestep: NoTimestep, Want: formatVec(va), Got: formatVec(vb),
						Detail: "point " + strconv.Itoa(i),
					})
					break
				}
			}
		}
	}
}

func (c *comparer) dynamic(a, b *scenario.Record) {
	rule := c.tol.Rule(scenario.FieldState)
	for _, id := range c.keys(collDynamic, a.DynamicStateIDs(), b.DynamicStateIDs()) {
		da, db := a.DynamicMapStates[id], b.DynamicMapStates[id]
		c.kind(collDynamic, id, da.Type, db.Type)
		if rule.Kind == Excluded {
			continue
		}
		n := c.span(collDynamic, id, scenario.FieldState, len(da.State), len(db.State))
		for t := 0; t < n; t++ {
			if da.State[t] != db.State[t] {
				c.rep.add(Mismatch{
					Kind: ToleranceExceeded, Collection: collDynamic, ID: id, Field: scenario.FieldState,
					Timestep: t, Want: da.State[t], Got: db.State[t],
				})
			}
		}
	}
}
