package extract

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/scenario"
)

// JumpThreshold is the largest plausible planar displacement between two
// consecutive log samples, in distance units.
const JumpThreshold = 100.0

var (
	ErrEmpty      = errors.New("extract: object has no samples")
	ErrMisaligned = errors.New("extract: state arrays are not aligned")
	ErrIndex      = errors.New("extract: timestep before start of log")
	ErrInvalidDt  = errors.New("extract: sim dt must be positive")
	ErrDuplicate  = errors.New("extract: duplicate identifier")
)

// RawState is one object's log in the source frame. 2-D sources leave Z at zero.
type RawState struct {
	Position []r3.Vec
	Heading  []float64
	Velocity []r2.Vec
	Size     []r3.Vec
	Valid    []bool
}

func (s RawState) Len() int { return len(s.Position) }

func (s RawState) check() error {
	n := len(s.Position)
	if n == 0 {
		return ErrEmpty
	}
	if len(s.Heading) != n || len(s.Velocity) != n || len(s.Size) != n || len(s.Valid) != n {
		return fmt.Errorf("%w: position=%d heading=%d velocity=%d size=%d valid=%d",
			ErrMisaligned, n, len(s.Heading), len(s.Velocity), len(s.Size), len(s.Valid))
	}
	return nil
}

type RawObject struct {
	ID       string
	Type     scenario.ObjectType
	State    RawState
	Controls map[string][]float64
}

type RawMapFeature struct {
	ID       string
	Type     scenario.ObjectType
	Polyline []r3.Vec
}

type RawSignal struct {
	ID     string
	Type   scenario.ObjectType
	Phases []string
}

// Episode is everything a source produced for one episode.
type Episode struct {
	ID          string
	Source      string
	Dt          float64
	Length      int
	SDCID       string
	Objects     []RawObject
	MapFeatures []RawMapFeature
	Signals     []RawSignal
}

// lastContinuous returns the largest index <= upto reachable from index 0
// without crossing a jump larger than JumpThreshold.
func lastContinuous(ps []r3.Vec, upto int) int {
	for i := 0; i < upto && i+1 < len(ps); i++ {
		a := r2.Vec{X: ps[i].X, Y: ps[i].Y}
		b := r2.Vec{X: ps[i+1].X, Y: ps[i+1].Y}
		if r2.Norm(r2.Sub(a, b)) > JumpThreshold {
			return i
		}
	}
	return upto
}
