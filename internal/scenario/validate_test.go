package scenario_test

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/scenecheck/internal/scenario"
	"github.com/san-kum/scenecheck/internal/testutil"
)

func TestSanityCheck_Valid(t *testing.T) {
	rec := testutil.Record("s0", 20, "ego", "car_1", "car_2")
	if err := scenario.SanityCheck(rec); err != nil {
		t.Fatalf("SanityCheck() = %v, want nil", err)
	}
}

func TestSanityCheck_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *scenario.Record)
		field  string
		kind   error
	}{
		{
			name:   "missing length",
			mutate: func(r *scenario.Record) { r.Length = scenario.LengthUnset },
			field:  "length",
			kind:   scenario.ErrMissingField,
		},
		{
			name:   "negative length",
			mutate: func(r *scenario.Record) { r.Length = -5 },
			field:  "length",
			kind:   scenario.ErrInvalidLength,
		},
		{
			name:   "missing tracks",
			mutate: func(r *scenario.Record) { r.Tracks = nil },
			field:  "tracks",
			kind:   scenario.ErrMissingField,
		},
		{
			name:   "missing map features",
			mutate: func(r *scenario.Record) { r.MapFeatures = nil },
			field:  "map_features",
			kind:   scenario.ErrMissingField,
		},
		{
			name:   "missing dynamic map states",
			mutate: func(r *scenario.Record) { r.DynamicMapStates = nil },
			field:  "dynamic_map_states",
			kind:   scenario.ErrMissingField,
		},
		{
			name:   "missing metadata",
			mutate: func(r *scenario.Record) { r.Metadata = nil },
			field:  "metadata",
			kind:   scenario.ErrMissingField,
		},
		{
			name: "short heading",
			mutate: func(r *scenario.Record) {
				r.Tracks["car_1"].State.Heading = r.Tracks["car_1"].State.Heading[:5]
			},
			field: "tracks.car_1.state.heading",
			kind:  scenario.ErrLengthMismatch,
		},
		{
			name: "short control echo",
			mutate: func(r *scenario.Record) {
				c := r.Tracks["ego"].State.Controls
				c["brake"] = c["brake"][:3]
			},
			field: "tracks.ego.state.brake",
			kind:  scenario.ErrLengthMismatch,
		},
		{
			name: "track longer than record",
			mutate: func(r *scenario.Record) {
				r.Length = 5
				r.DynamicMapStates = map[string]*scenario.DynamicState{}
			},
			field: "tracks.car_1.state",
			kind:  scenario.ErrLengthMismatch,
		},
		{
			name: "signal longer than record",
			mutate: func(r *scenario.Record) {
				s := r.DynamicMapStates["signal_1"]
				s.State = append(s.State, "RED")
			},
			field: "dynamic_map_states.signal_1",
			kind:  scenario.ErrLengthMismatch,
		},
		{
			name:   "unresolved ego",
			mutate: func(r *scenario.Record) { r.Metadata.SDCID = "ghost" },
			field:  "metadata.sdc_id",
			kind:   scenario.ErrUnresolvedEgo,
		},
		{
			name:   "nil map feature",
			mutate: func(r *scenario.Record) { r.MapFeatures["lane_9"] = nil },
			field:  "map_features.lane_9",
			kind:   scenario.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.Record("s0", 20, "ego", "car_1")
			tt.mutate(rec)

			err := scenario.SanityCheck(rec)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var se *scenario.StructuralError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StructuralError, got %T", err)
			}
			if se.Field != tt.field {
				t.Errorf("Field = %q, want %q", se.Field, tt.field)
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.kind)
			}
			if !errors.Is(err, scenario.ErrStructural) {
				t.Errorf("error does not wrap ErrStructural")
			}
		})
	}
}

func TestSanityCheck_ShortTrackAllowed(t *testing.T) {
	rec := testutil.Record("s0", 20, "ego")
	rec.Tracks["late"] = testutil.Track(12, 3)
	rec.Tracks["late"].State.Position[0] = r3.Vec{X: 1}
	if err := scenario.SanityCheck(rec); err != nil {
		t.Fatalf("SanityCheck() = %v, want nil", err)
	}
}

func TestSanityCheck_Nil(t *testing.T) {
	if err := scenario.SanityCheck(nil); !errors.Is(err, scenario.ErrStructural) {
		t.Errorf("SanityCheck(nil) = %v, want structural error", err)
	}
}
