package synth

// State is a vehicle state in the canonical frame: x, y, heading, speed.
type State []float64

const (
	IdxX = iota
	IdxY
	IdxHeading
	IdxSpeed
	stateDim
)

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Control is steering and signed throttle, both in [-1, 1].
type Control []float64

type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}
