package synth

import "math"

const (
	DefaultWheelbase = 2.8
	DefaultMaxSteer  = 0.5
	DefaultMaxAccel  = 3.0
	DefaultMaxBrake  = 8.0
)

// Bicycle is a kinematic single-track vehicle model.
type Bicycle struct {
	Wheelbase float64
	MaxSteer  float64
	MaxAccel  float64
	MaxBrake  float64
	Drag      float64
	Length    float64
	Width     float64
	Height    float64
}

func NewBicycle() *Bicycle {
	return &Bicycle{
		Wheelbase: DefaultWheelbase,
		MaxSteer:  DefaultMaxSteer,
		MaxAccel:  DefaultMaxAccel,
		MaxBrake:  DefaultMaxBrake,
		Drag:      0.05,
		Length:    4.5,
		Width:     2.0,
		Height:    1.5,
	}
}

func (b *Bicycle) StateDim() int   { return stateDim }
func (b *Bicycle) ControlDim() int { return 2 }

func (b *Bicycle) Derivative(x State, u Control, t float64) State {
	theta, v := x[IdxHeading], x[IdxSpeed]

	steer, throttle := 0.0, 0.0
	if len(u) >= 2 {
		steer, throttle = u[0], u[1]
	}
	delta := steer * b.MaxSteer

	accel := throttle * b.MaxAccel
	if throttle < 0 {
		accel = throttle * b.MaxBrake
	}
	accel -= b.Drag * v
	// No reversing: braking stops the vehicle and holds it.
	if v <= 0 && accel < 0 {
		accel = 0
	}

	return State{
		v * math.Cos(theta),
		v * math.Sin(theta),
		v / b.Wheelbase * math.Tan(delta),
		accel,
	}
}

// YawRate is the heading rate for speed v under steering command steer.
func (b *Bicycle) YawRate(v, steer float64) float64 {
	return v / b.Wheelbase * math.Tan(steer*b.MaxSteer)
}
