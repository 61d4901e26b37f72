package coords

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const twoPi = 2 * math.Pi

// VectorToCanonical mirrors v across the x-axis. Applying it twice returns v.
func VectorToCanonical(v r2.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: -v.Y}
}

// VectorFromCanonical is the inverse of VectorToCanonical. The transform is an
// involution, so both directions share one implementation.
func VectorFromCanonical(v r2.Vec) r2.Vec {
	return VectorToCanonical(v)
}

func VectorsToCanonical(vs []r2.Vec) []r2.Vec {
	out := make([]r2.Vec, len(vs))
	for i, v := range vs {
		out[i] = VectorToCanonical(v)
	}
	return out
}

// PointToCanonical projects p onto the ground plane and converts it.
func PointToCanonical(p r3.Vec) r2.Vec {
	return VectorToCanonical(r2.Vec{X: p.X, Y: p.Y})
}

// PositionToCanonical converts p and keeps its height.
func PositionToCanonical(p r3.Vec) r3.Vec {
	return r3.Vec{X: p.X, Y: -p.Y, Z: p.Z}
}

func PointsToCanonical(ps []r3.Vec) []r2.Vec {
	out := make([]r2.Vec, len(ps))
	for i, p := range ps {
		out[i] = PointToCanonical(p)
	}
	return out
}

// HeadingToCanonical negates theta and wraps the result into (-pi, pi].
func HeadingToCanonical(theta float64) float64 {
	return WrapToPi(-theta)
}

// HeadingFromCanonical is the inverse of HeadingToCanonical up to wrapping.
func HeadingFromCanonical(theta float64) float64 {
	return WrapToPi(-theta)
}

func HeadingsToCanonical(thetas []float64) []float64 {
	out := make([]float64, len(thetas))
	for i, th := range thetas {
		out[i] = HeadingToCanonical(th)
	}
	return out
}

// WrapToPi returns theta - 2pi*round(theta/2pi), nudged so that the result lies
// in (-pi, pi]. Infinite inputs yield NaN.
func WrapToPi(theta float64) float64 {
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return math.NaN()
	}
	w := theta - twoPi*math.Round(theta/twoPi)
	if w <= -math.Pi {
		w += twoPi
	} else if w > math.Pi {
		w -= twoPi
	}
	return w
}

// AngleDiff returns the signed smallest rotation from b to a.
func AngleDiff(a, b float64) float64 {
	return WrapToPi(a - b)
}
