// Package metrics summarizes how far a reproduced track drifts from the
// recorded one. Metrics complement the pass/fail comparator with magnitudes.
package metrics

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/scenario"
)

// Sample is one timestep of one track in the canonical frame.
type Sample struct {
	Position r2.Vec
	Heading  float64
	Velocity r2.Vec
	Valid    bool
	Controls []float64
}

type Metric interface {
	Name() string
	Observe(a, b Sample, t int)
	Value() float64
	Reset()
}

// SampleAt extracts timestep t of a track. Controls are listed in sorted name
// order.
func SampleAt(tr *scenario.Track, t int) Sample {
	s := tr.State
	smp := Sample{
		Position: r2.Vec{X: s.Position[t].X, Y: s.Position[t].Y},
		Heading:  s.Heading[t],
		Velocity: s.Velocity[t],
		Valid:    s.Valid[t],
	}
	for _, name := range s.ControlNames() {
		if t < len(s.Controls[name]) {
			smp.Controls = append(smp.Controls, s.Controls[name][t])
		}
	}
	return smp
}

// Track resets every metric, feeds it the overlapping prefix of a and b and
// returns the final values keyed by metric name.
func Track(a, b *scenario.Track, ms ...Metric) map[string]float64 {
	n := min(a.State.Len(), b.State.Len())
	for _, m := range ms {
		m.Reset()
	}
	for t := 0; t < n; t++ {
		sa, sb := SampleAt(a, t), SampleAt(b, t)
		for _, m := range ms {
			m.Observe(sa, sb, t)
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns a fresh set of the drift metrics the CLI reports.
func Default() []Metric {
	return []Metric{
		NewPositionDrift(),
		NewFinalDisplacement(),
		NewHeadingDrift(),
		NewVelocityDrift(),
		NewValidAgreement(),
		NewControlEffort(),
	}
}
