package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/scenario"
)

// PositionDrift is the largest planar distance between matched samples.
type PositionDrift struct {
	name    string
	maxDist float64
}

func NewPositionDrift() *PositionDrift {
	return &PositionDrift{name: "position_drift"}
}

func (p *PositionDrift) Name() string { return p.name }

func (p *PositionDrift) Observe(a, b Sample, t int) {
	p.maxDist = max(p.maxDist, r2.Norm(r2.Sub(a.Position, b.Position)))
}

func (p *PositionDrift) Value() float64 { return p.maxDist }

func (p *PositionDrift) Reset() { p.maxDist = 0 }

// FinalDisplacement is the planar distance at the last observed step.
type FinalDisplacement struct {
	name string
	last float64
}

func NewFinalDisplacement() *FinalDisplacement {
	return &FinalDisplacement{name: "final_displacement"}
}

func (f *FinalDisplacement) Name() string { return f.name }

func (f *FinalDisplacement) Observe(a, b Sample, t int) {
	f.last = r2.Norm(r2.Sub(a.Position, b.Position))
}

func (f *FinalDisplacement) Value() float64 { return f.last }

func (f *FinalDisplacement) Reset() { f.last = 0 }

// Distances returns the per-step planar distance over the overlapping prefix.
func Distances(a, b *scenario.Track) []float64 {
	n := min(a.State.Len(), b.State.Len())
	out := make([]float64, n)
	for t := range out {
		pa, pb := a.State.Position[t], b.State.Position[t]
		out[t] = floats.Distance([]float64{pa.X, pa.Y}, []float64{pb.X, pb.Y}, 2)
	}
	return out
}

// RMS is the root mean square of xs, zero when empty.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Norm(xs, 2) / math.Sqrt(float64(len(xs)))
}
