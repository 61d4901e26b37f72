package testutil

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/scenario"
)

// Record builds a valid scenario record with deterministic contents.
//
// Every track moves along +x at one unit per step, offset by its index on y.
// The first id becomes the ego and also carries control echoes. The record
// has one lane feature and one signal whose phase sequence spans the full length.
func Record(id string, length int, trackIDs ...string) *scenario.Record {
	if len(trackIDs) == 0 {
		trackIDs = []string{"ego"}
	}
	rec := scenario.New(id, length)
	rec.Metadata.SDCID = trackIDs[0]
	rec.Metadata.Source = "fixture"
	rec.Metadata.Dt = 0.1

	for k, tid := range trackIDs {
		rec.Tracks[tid] = Track(length, float64(k))
	}
	ego := rec.Tracks[trackIDs[0]]
	ego.State.Controls = map[string][]float64{
		scenario.ControlThrottle: make([]float64, length),
		scenario.ControlBrake:    make([]float64, length),
		scenario.ControlSteering: make([]float64, length),
	}
	for i := 0; i < length; i++ {
		ego.State.Controls[scenario.ControlThrottle][i] = 1
	}

	rec.MapFeatures["lane_1"] = &scenario.MapFeature{
		Type:     scenario.TypeLaneCenter,
		Polyline: []r3.Vec{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}},
	}

	phases := make([]string, length)
	for i := range phases {
		phases[i] = "GREEN"
		if i >= length/2 {
			phases[i] = "RED"
		}
	}
	rec.DynamicMapStates["signal_1"] = &scenario.DynamicState{Type: scenario.TypeTrafficLight, State: phases}

	return rec
}

// Track builds a vehicle track of the given length travelling along y = offset.
func Track(length int, offset float64) *scenario.Track {
	s := scenario.TrackState{
		Position: make([]r3.Vec, length),
		Heading:  make([]float64, length),
		Velocity: make([]r2.Vec, length),
		Size:     make([]r3.Vec, length),
		Valid:    make([]bool, length),
	}
	for i := 0; i < length; i++ {
		s.Position[i] = r3.Vec{X: float64(i), Y: offset}
		s.Heading[i] = 0.01 * float64(i)
		s.Velocity[i] = r2.Vec{X: 10, Y: 0}
		s.Size[i] = r3.Vec{X: 4.5, Y: 2, Z: 1.5}
		s.Valid[i] = true
	}
	return &scenario.Track{Type: scenario.TypeVehicle, State: s}
}

// Truncate returns a deep copy of rec cut to its first n timesteps.
func Truncate(rec *scenario.Record, n int) *scenario.Record {
	c := rec.Clone()
	c.Length = n
	for _, tr := range c.Tracks {
		s := &tr.State
		m := min(n, s.Len())
		s.Position, s.Heading, s.Velocity = s.Position[:m], s.Heading[:m], s.Velocity[:m]
		s.Size, s.Valid = s.Size[:m], s.Valid[:m]
		for name, v := range s.Controls {
			s.Controls[name] = v[:m]
		}
	}
	for _, ds := range c.DynamicMapStates {
		ds.State = ds.State[:min(n, len(ds.State))]
	}
	return c
}
