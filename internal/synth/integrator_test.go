package synth

import (
	"math"
	"testing"
)

type oscillator struct{}

func (oscillator) Derivative(x State, u Control, t float64) State {
	return State{x[1], -x[0]}
}

func (oscillator) StateDim() int   { return 2 }
func (oscillator) ControlDim() int { return 0 }

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := State{1.0, 0.0}
	dt := 0.01
	steps := 100
	for i := 0; i < steps; i++ {
		x = integ.Step(oscillator{}, x, nil, float64(i)*dt, dt)
	}

	if want := math.Cos(float64(steps) * dt); math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("position = %.10f, want %.10f", x[0], want)
	}
	if want := -math.Sin(float64(steps) * dt); math.Abs(x[1]-want) > 1e-8 {
		t.Errorf("velocity = %.10f, want %.10f", x[1], want)
	}
}

func TestEulerLessAccurate(t *testing.T) {
	rk, eu := NewRK4(), NewEuler()
	xr, xe := State{1, 0}, State{1, 0}
	for i := 0; i < 100; i++ {
		xr = rk.Step(oscillator{}, xr, nil, 0, 0.01)
		xe = eu.Step(oscillator{}, xe, nil, 0, 0.01)
	}
	want := math.Cos(1.0)
	if math.Abs(xe[0]-want) <= math.Abs(xr[0]-want) {
		t.Errorf("euler error %v not larger than rk4 error %v", math.Abs(xe[0]-want), math.Abs(xr[0]-want))
	}
}

func TestIntegratorByName(t *testing.T) {
	for _, name := range []string{"", "rk4", "euler"} {
		if _, ok := IntegratorByName(name); !ok {
			t.Errorf("IntegratorByName(%q) not found", name)
		}
	}
	if _, ok := IntegratorByName("verlet"); ok {
		t.Error("IntegratorByName(verlet) should fail")
	}
}

func TestBicycle(t *testing.T) {
	b := NewBicycle()

	dx := b.Derivative(State{0, 0, 0, 10}, Control{0, 0}, 0)
	if dx[IdxX] != 10 || dx[IdxY] != 0 || dx[IdxHeading] != 0 {
		t.Errorf("straight derivative = %v", dx)
	}
	if want := -b.Drag * 10; dx[IdxSpeed] != want {
		t.Errorf("coasting accel = %v, want %v", dx[IdxSpeed], want)
	}

	dx = b.Derivative(State{0, 0, 0, 0}, Control{0, -1}, 0)
	if dx[IdxSpeed] != 0 {
		t.Errorf("braking at rest accel = %v, want 0", dx[IdxSpeed])
	}

	dx = b.Derivative(State{0, 0, 0, 10}, Control{1, 0}, 0)
	if want := b.YawRate(10, 1); dx[IdxHeading] != want || want <= 0 {
		t.Errorf("yaw rate = %v, want %v > 0", dx[IdxHeading], want)
	}
}
