package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/scenecheck/internal/testutil"
)

func TestTrack_Identical(t *testing.T) {
	a := testutil.Track(20, 0)
	got := Track(a, a.Clone(), Default()...)

	want := map[string]float64{
		"position_drift":     0,
		"final_displacement": 0,
		"heading_drift":      0,
		"velocity_drift":     0,
		"valid_agreement":    1,
		"control_effort":     0,
	}
	for name, w := range want {
		if got[name] != w {
			t.Errorf("%s = %v, want %v", name, got[name], w)
		}
	}
}

func TestTrack_Drift(t *testing.T) {
	a := testutil.Track(10, 0)
	b := a.Clone()
	b.State.Position[4].Y = 3
	b.State.Position[9].X += 4
	b.State.Heading[2] = math.Pi
	b.State.Velocity[0].X = 14
	b.State.Valid[5] = false

	got := Track(a, b, Default()...)

	tests := []struct {
		name string
		want float64
	}{
		{"position_drift", 4},
		{"final_displacement", 4},
		{"heading_drift", math.Pi - 0.02},
		{"velocity_drift", 0.4},
		{"valid_agreement", 0.9},
	}
	for _, tt := range tests {
		if math.Abs(got[tt.name]-tt.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tt.name, got[tt.name], tt.want)
		}
	}
}

func TestTrack_OverlapOnly(t *testing.T) {
	a := testutil.Track(10, 0)
	b := testutil.Track(4, 0)
	a.State.Position[8].X = 1000

	got := Track(a, b, NewPositionDrift())
	if got["position_drift"] != 0 {
		t.Errorf("position_drift = %v, want 0", got["position_drift"])
	}
}

func TestHeadingDrift_Wraps(t *testing.T) {
	h := NewHeadingDrift()
	h.Observe(Sample{Heading: math.Pi - 0.05}, Sample{Heading: -math.Pi + 0.05}, 0)
	if math.Abs(h.Value()-0.1) > 1e-9 {
		t.Errorf("Value() = %v, want 0.1", h.Value())
	}
	h.Reset()
	if h.Value() != 0 {
		t.Errorf("after Reset Value() = %v, want 0", h.Value())
	}
}

func TestControlEffort(t *testing.T) {
	c := NewControlEffort()
	c.Observe(Sample{}, Sample{Controls: []float64{0, 1, -0.5}}, 0)
	c.Observe(Sample{}, Sample{Controls: []float64{0, 0.5, 0}}, 1)
	if c.Value() != 1.0 {
		t.Errorf("Value() = %v, want 1", c.Value())
	}
}

func TestDistancesAndRMS(t *testing.T) {
	a := testutil.Track(4, 0)
	b := testutil.Track(4, 2)

	d := Distances(a, b)
	if len(d) != 4 {
		t.Fatalf("len(Distances) = %d, want 4", len(d))
	}
	for i, v := range d {
		if math.Abs(v-2) > 1e-12 {
			t.Errorf("Distances[%d] = %v, want 2", i, v)
		}
	}
	if got := RMS(d); math.Abs(got-2) > 1e-12 {
		t.Errorf("RMS = %v, want 2", got)
	}
	if RMS(nil) != 0 {
		t.Errorf("RMS(nil) != 0")
	}
}
