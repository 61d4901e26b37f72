package extract

import (
	"fmt"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/coords"
	"github.com/san-kum/scenecheck/internal/scenario"
)

// BuildTrack converts a raw object into a canonical track, cut at its first
// discontinuity. The second result reports how many samples were dropped.
func BuildTrack(obj RawObject) (*scenario.Track, int, error) {
	if err := obj.State.check(); err != nil {
		return nil, 0, fmt.Errorf("object %s: %w", obj.ID, err)
	}
	for name, c := range obj.Controls {
		if len(c) != obj.State.Len() {
			return nil, 0, fmt.Errorf("object %s: %w: control %s has %d samples, want %d",
				obj.ID, ErrMisaligned, name, len(c), obj.State.Len())
		}
	}

	raw := obj.State
	n := lastContinuous(raw.Position, raw.Len()-1) + 1

	s := scenario.TrackState{
		Position: make([]r3.Vec, n),
		Heading:  make([]float64, n),
		Velocity: make([]r2.Vec, n),
		Size:     slices.Clone(raw.Size[:n]),
		Valid:    slices.Clone(raw.Valid[:n]),
	}
	for i := 0; i < n; i++ {
		s.Position[i] = coords.PositionToCanonical(raw.Position[i])
		s.Heading[i] = coords.HeadingToCanonical(raw.Heading[i])
		s.Velocity[i] = coords.VectorToCanonical(raw.Velocity[i])
	}
	if len(obj.Controls) > 0 {
		s.Controls = make(map[string][]float64, len(obj.Controls))
		for name, c := range obj.Controls {
			s.Controls[name] = slices.Clone(c[:n])
		}
	}

	typ := obj.Type
	if typ == "" {
		typ = scenario.TypeOther
	}
	return &scenario.Track{Type: typ, State: s}, raw.Len() - n, nil
}

// BuildRecord converts a whole episode into a validated canonical record.
// When ep.Length is zero the longest raw object defines the length.
func BuildRecord(ep Episode) (*scenario.Record, error) {
	length := ep.Length
	if length == 0 {
		for _, o := range ep.Objects {
			length = max(length, o.State.Len())
		}
	}

	rec := scenario.New(ep.ID, length)
	rec.Metadata.SDCID = ep.SDCID
	rec.Metadata.Source = ep.Source
	rec.Metadata.Dt = ep.Dt

	for _, o := range ep.Objects {
		if _, dup := rec.Tracks[o.ID]; dup {
			return nil, fmt.Errorf("%w: track %s", ErrDuplicate, o.ID)
		}
		track, dropped, err := BuildTrack(o)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			slog.Debug("trajectory truncated at discontinuity",
				"episode", ep.ID,
				"object", o.ID,
				"kept", track.State.Len(),
				"dropped", dropped,
			)
		}
		rec.Tracks[o.ID] = track
	}

	for _, f := range ep.MapFeatures {
		if _, dup := rec.MapFeatures[f.ID]; dup {
			return nil, fmt.Errorf("%w: map feature %s", ErrDuplicate, f.ID)
		}
		poly := make([]r3.Vec, len(f.Polyline))
		for i, p := range f.Polyline {
			poly[i] = coords.PositionToCanonical(p)
		}
		rec.MapFeatures[f.ID] = &scenario.MapFeature{Type: f.Type, Polyline: poly}
	}

	for _, sig := range ep.Signals {
		if _, dup := rec.DynamicMapStates[sig.ID]; dup {
			return nil, fmt.Errorf("%w: dynamic state %s", ErrDuplicate, sig.ID)
		}
		typ := sig.Type
		if typ == "" {
			typ = scenario.TypeTrafficLight
		}
		rec.DynamicMapStates[sig.ID] = &scenario.DynamicState{Type: typ, State: slices.Clone(sig.Phases)}
	}

	if err := scenario.SanityCheck(rec); err != nil {
		return nil, fmt.Errorf("episode %s: %w", ep.ID, err)
	}
	return rec, nil
}
