package synth

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/extract"
	"github.com/san-kum/scenecheck/internal/policy"
	"github.com/san-kum/scenecheck/internal/scenario"
)

func idleGen() *Generator {
	return New(NewBicycle(), NewRK4(), policy.Idle())
}

func build(t *testing.T, ep *extract.Episode) *scenario.Record {
	t.Helper()
	rec, err := extract.BuildRecord(*ep)
	if err != nil {
		t.Fatalf("BuildRecord() error = %v", err)
	}
	return rec
}

func TestGeneratorInvalidConfig(t *testing.T) {
	base := DefaultConfig()
	with := func(f func(*Config)) Config {
		c := base
		f(&c)
		return c
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", with(func(c *Config) { c.Dt = 0 })},
		{"negative dt", with(func(c *Config) { c.Dt = -0.1 })},
		{"zero steps", with(func(c *Config) { c.Steps = 0 })},
		{"negative agents", with(func(c *Config) { c.Agents = -1 })},
		{"negative speed", with(func(c *Config) { c.Speed = -3 })},
		{"zero signal period", with(func(c *Config) { c.SignalPeriod = 0 })},
		{"teleport past end", with(func(c *Config) { c.Teleport = &Teleport{Object: EgoID, Step: c.Steps} })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idleGen().Run(context.Background(), tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestGeneratorRun_Straight(t *testing.T) {
	cfg := DefaultConfig()
	ep, err := idleGen().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if ep.Length != cfg.Steps || ep.SDCID != EgoID || ep.Source != SourceTag {
		t.Errorf("episode header = %d %q %q", ep.Length, ep.SDCID, ep.Source)
	}
	if len(ep.Objects) != 1+cfg.Agents {
		t.Fatalf("len(Objects) = %d, want %d", len(ep.Objects), 1+cfg.Agents)
	}

	ego := ep.Objects[0].State
	if ego.Len() != cfg.Steps {
		t.Fatalf("ego samples = %d, want %d", ego.Len(), cfg.Steps)
	}
	for i := 1; i < ego.Len(); i++ {
		if ego.Position[i].X <= ego.Position[i-1].X {
			t.Fatalf("ego not advancing at step %d", i)
		}
		if ego.Position[i].Y != 0 || ego.Heading[i] != 0 {
			t.Fatalf("ego left the lane at step %d: %+v heading %v", i, ego.Position[i], ego.Heading[i])
		}
	}
	for _, v := range ep.Objects[0].Controls[scenario.ControlThrottle] {
		if v != 1 {
			t.Fatalf("throttle echo = %v, want 1", v)
		}
	}
}

func TestGeneratorRun_SourceFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agents = 0
	cfg.Steps = 50
	gen := New(NewBicycle(), NewRK4(), policy.NewConstant(0.2, 0))
	ep, err := gen.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	raw := ep.Objects[0].State
	last := raw.Len() - 1
	if raw.Position[last].Y >= 0 || raw.Heading[last] >= 0 {
		t.Errorf("left turn in source frame: y = %v heading = %v, want both negative", raw.Position[last].Y, raw.Heading[last])
	}

	rec := build(t, ep)
	s := rec.SDCTrack().State
	if s.Position[last].Y <= 0 || s.Heading[last] <= 0 {
		t.Errorf("left turn in canonical frame: y = %v heading = %v, want both positive", s.Position[last].Y, s.Heading[last])
	}
	if math.Abs(s.Position[last].Y+raw.Position[last].Y) > 1e-12 {
		t.Errorf("canonical y = %v, raw y = %v, want negated", s.Position[last].Y, raw.Position[last].Y)
	}
}

func TestGeneratorRun_RoundTrip(t *testing.T) {
	ep, err := idleGen().Run(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	rec := build(t, ep)

	data, err := scenario.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	decoded, err := scenario.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	rep, err := compare.Compare(rec, decoded, compare.FullScene, compare.StrictTolerance())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !rep.OK() {
		t.Errorf("round trip mismatches:\n%s", rep.Format())
	}
}

func TestGeneratorRun_Deterministic(t *testing.T) {
	cfg := DefaultConfig()
	a := build(t, mustRun(t, idleGen(), cfg))
	b := build(t, mustRun(t, idleGen(), cfg))

	rep, err := compare.Compare(a, b, compare.FullScene, compare.StrictTolerance())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if !rep.OK() {
		t.Errorf("same seed differs:\n%s", rep.Format())
	}

	cfg.Seed = 99
	c := build(t, mustRun(t, idleGen(), cfg))
	rep, err = compare.Compare(a, c, compare.FullScene, compare.DefaultTolerance())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if rep.OK() {
		t.Error("different seeds produced identical traffic")
	}
	if len(rep.Filter("tracks", EgoID)) != 0 {
		t.Errorf("ego should not depend on seed:\n%s", rep.Format())
	}
}

func TestGeneratorRun_Teleport(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Teleport = &Teleport{Object: EgoID, Step: 40, Offset: r2.Vec{X: 500}}

	clean := build(t, mustRun(t, idleGen(), DefaultConfig()))
	jumped := build(t, mustRun(t, idleGen(), cfg))

	ego := jumped.SDCTrack().State
	if ego.Len() != 40 {
		t.Fatalf("ego length = %d, want 40", ego.Len())
	}
	if got := len(ego.Controls[scenario.ControlSteering]); got != 40 {
		t.Errorf("steering echo length = %d, want 40", got)
	}

	rep, err := compare.Compare(clean, jumped, compare.EgoOnly, compare.DefaultTolerance())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if rep.Count(compare.LengthMismatch) != 1 || rep.Count(compare.ToleranceExceeded) != 0 {
		t.Errorf("want one length mismatch only:\n%s", rep.Format())
	}
}

func TestGeneratorRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := idleGen().Run(ctx, DefaultConfig()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Steps = 20
	eps, err := Batch(context.Background(), idleGen, cfg, 3)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	want := []string{"synthetic-000", "synthetic-001", "synthetic-002"}
	for i, ep := range eps {
		if ep.ID != want[i] {
			t.Errorf("eps[%d].ID = %q, want %q", i, ep.ID, want[i])
		}
	}
	if eps[0].Objects[1].State.Position[0] == eps[1].Objects[1].State.Position[0] {
		t.Error("episodes share a seed")
	}

	cfg.Dt = 0
	if _, err := Batch(context.Background(), idleGen, cfg, 2); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func mustRun(t *testing.T, g *Generator, cfg Config) *extract.Episode {
	t.Helper()
	ep, err := g.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return ep
}
