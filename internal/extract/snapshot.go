package extract

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/coords"
)

type Options struct {
	// CheckLastState stops at the last sample before the first jump.
	CheckLastState bool
	// SimDt is the sampling interval used for angular velocity.
	SimDt float64
}

func DefaultOptions() Options {
	return Options{SimDt: 0.1}
}

// Snapshot is one object's canonical kinematic state at a single timestep.
type Snapshot struct {
	Index           int
	Position        r2.Vec
	Length          float64
	Width           float64
	Heading         float64
	Velocity        r2.Vec
	Valid           bool
	AngularVelocity float64
}

// SnapshotAt extracts the state at timestep t. Negative t counts back from the
// end of the log; t past the end is clamped to the last sample.
func SnapshotAt(raw RawState, t int, opts Options) (Snapshot, error) {
	if err := raw.check(); err != nil {
		return Snapshot{}, err
	}
	if opts.SimDt <= 0 {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDt, opts.SimDt)
	}

	n := raw.Len()
	if t < 0 {
		t += n
		if t < 0 {
			return Snapshot{}, fmt.Errorf("%w: %d samples, index %d", ErrIndex, n, t-n)
		}
	}
	if t >= n {
		t = n - 1
	}
	if opts.CheckLastState {
		t = lastContinuous(raw.Position, t)
	}

	snap := Snapshot{
		Index:    t,
		Position: coords.PointToCanonical(raw.Position[t]),
		Length:   raw.Size[t].X,
		Width:    raw.Size[t].Y,
		Heading:  coords.HeadingToCanonical(raw.Heading[t]),
		Velocity: coords.VectorToCanonical(raw.Velocity[t]),
		Valid:    raw.Valid[t],
	}
	if t < n-1 {
		// Not the literal next-minus-current difference: the step is wrapped so a
		// heading crossing ±π yields its true small rate instead of ~2π/dt.
		next := coords.HeadingToCanonical(raw.Heading[t+1])
		snap.AngularVelocity = coords.AngleDiff(next, snap.Heading) / opts.SimDt
	}
	return snap, nil
}

// FullTrajectory returns the canonical planar positions of the first unbroken
// run of the log. Heights are dropped.
func FullTrajectory(raw RawState) []r2.Vec {
	if len(raw.Position) == 0 {
		return nil
	}
	end := lastContinuous(raw.Position, len(raw.Position)-1)
	return coords.PointsToCanonical(raw.Position[:end+1])
}
