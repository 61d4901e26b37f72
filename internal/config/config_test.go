package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/scenario"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	mode, err := cfg.CompareMode()
	if err != nil || mode != compare.FullScene {
		t.Errorf("CompareMode() = %v, %v, want full_scene", mode, err)
	}
	if diff := cmp.Diff(compare.DefaultTolerance(), cfg.CompareTolerance()); diff != "" {
		t.Errorf("default tolerance mismatch (-want +got):\n%s", diff)
	}
	if opts := cfg.ExtractOptions(); opts.SimDt != DefaultSimDt || opts.CheckLastState {
		t.Errorf("ExtractOptions() = %+v", opts)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenecheck.yaml")

	cfg := DefaultConfig()
	cfg.Mode = "ego_only"
	cfg.Tolerance.HeadingDecimals = 2
	cfg.Generate.PolicyParams = map[string]float64{"Kp": 1.5}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("tolerance:\n  velocity_decimals: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tolerance.VelocityDecimals != 3 {
		t.Errorf("velocity_decimals = %d, want 3", cfg.Tolerance.VelocityDecimals)
	}
	if cfg.Tolerance.PositionDecimals != compare.DefaultPositionDecimals {
		t.Errorf("position_decimals = %d, want default", cfg.Tolerance.PositionDecimals)
	}
	if r := cfg.CompareTolerance().Rule(scenario.FieldVelocity); r.Decimals != 3 {
		t.Errorf("velocity rule decimals = %d, want 3", r.Decimals)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"bad mode", "mode: sideways\n", compare.ErrInvalidMode},
		{"bad sim dt", "extract:\n  sim_dt: 0\n", ErrInvalid},
		{"bad integrator", "generate:\n  integrator: verlet\n", ErrInvalid},
		{"bad policy", "generate:\n  policy: chaos\n", ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestGetPreset(t *testing.T) {
	strict := GetPreset("strict")
	if strict == nil {
		t.Fatal("expected preset, got nil")
	}
	tol := strict.CompareTolerance()
	if !tol.RequireEqualLength {
		t.Error("strict preset should require equal length")
	}
	if r := tol.Rule(scenario.ControlThrottle); r.Kind != compare.Exact {
		t.Errorf("strict throttle rule = %v, want exact", r.Kind)
	}

	loose := GetPreset("loose")
	if r := loose.CompareTolerance().Rule(scenario.FieldPosition); r.Decimals != 1 || !r.Planar {
		t.Errorf("loose position rule = %+v", r)
	}

	strict.Mode = "ego_only"
	if GetPreset("strict").Mode != "full_scene" {
		t.Error("GetPreset should return a fresh copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"cruise", "default", "ego", "loose", "strict"}
	if diff := cmp.Diff(want, ListPresets()); diff != "" {
		t.Errorf("ListPresets() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range ListPresets() {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: Validate() error = %v", name, err)
		}
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := GetPreset("cruise")
	cfg.Generate.PolicyParams = map[string]float64{"Speed": 12}
	gen, err := cfg.NewGenerator()
	if err != nil || gen == nil {
		t.Fatalf("NewGenerator() = %v, %v", gen, err)
	}

	cfg.Generate.Policy = "chaos"
	if _, err := cfg.NewGenerator(); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestSynthConfig(t *testing.T) {
	cfg := DefaultConfig()
	sc := cfg.SynthConfig("ep-7")
	if sc.ID != "ep-7" || sc.Steps != DefaultSteps || sc.Dt != DefaultSimDt {
		t.Errorf("SynthConfig() = %+v", sc)
	}
}
