package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/scenecheck/internal/compare"
	"github.com/san-kum/scenecheck/internal/extract"
	"github.com/san-kum/scenecheck/internal/policy"
	"github.com/san-kum/scenecheck/internal/scenario"
	"github.com/san-kum/scenecheck/internal/synth"
)

const (
	DefaultSimDt        = 0.1
	DefaultSteps        = 100
	DefaultAgents       = 2
	DefaultSpeed        = 10.0
	DefaultSignalPeriod = 30
	DefaultDataDir      = ".scenecheck"
	DefaultLedger       = "ledger.db"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Mode      string          `yaml:"mode"`
	Tolerance ToleranceConfig `yaml:"tolerance"`
	Extract   ExtractConfig   `yaml:"extract"`
	Generate  GenerateConfig  `yaml:"generate"`
	Storage   StorageConfig   `yaml:"storage"`
}

type ToleranceConfig struct {
	PositionDecimals int `yaml:"position_decimals"`
	HeadingDecimals  int `yaml:"heading_decimals"`
	VelocityDecimals int `yaml:"velocity_decimals"`
	SizeDecimals     int `yaml:"size_decimals"`
	// Height includes the z component of positions and polylines.
	Height             bool `yaml:"height"`
	CompareControls    bool `yaml:"compare_controls"`
	Exact              bool `yaml:"exact"`
	RequireEqualLength bool `yaml:"require_equal_length"`
}

type ExtractConfig struct {
	SimDt          float64 `yaml:"sim_dt"`
	CheckLastState bool    `yaml:"check_last_state"`
}

type GenerateConfig struct {
	Dt           float64            `yaml:"dt"`
	Steps        int                `yaml:"steps"`
	Seed         int64              `yaml:"seed"`
	Agents       int                `yaml:"agents"`
	Speed        float64            `yaml:"speed"`
	SignalPeriod int                `yaml:"signal_period"`
	Integrator   string             `yaml:"integrator"`
	Policy       string             `yaml:"policy"`
	PolicyParams map[string]float64 `yaml:"policy_params,omitempty"`
}

type StorageConfig struct {
	Dir    string `yaml:"dir"`
	Ledger string `yaml:"ledger"`
}

func DefaultConfig() *Config {
	return &Config{
		Mode: string(compare.FullScene),
		Tolerance: ToleranceConfig{
			PositionDecimals: compare.DefaultPositionDecimals,
			HeadingDecimals:  compare.DefaultHeadingDecimals,
			VelocityDecimals: compare.DefaultVelocityDecimals,
			SizeDecimals:     compare.DefaultPositionDecimals,
		},
		Extract: ExtractConfig{SimDt: DefaultSimDt},
		Generate: GenerateConfig{
			Dt:           DefaultSimDt,
			Steps:        DefaultSteps,
			Seed:         1,
			Agents:       DefaultAgents,
			Speed:        DefaultSpeed,
			SignalPeriod: DefaultSignalPeriod,
			Integrator:   "rk4",
			Policy:       "idle",
		},
		Storage: StorageConfig{Dir: DefaultDataDir, Ledger: DefaultLedger},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := compare.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Extract.SimDt <= 0 {
		return fmt.Errorf("%w: extract.sim_dt must be positive, got %v", ErrInvalid, c.Extract.SimDt)
	}
	if _, ok := synth.IntegratorByName(c.Generate.Integrator); !ok {
		return fmt.Errorf("%w: unknown integrator %q", ErrInvalid, c.Generate.Integrator)
	}
	switch c.Generate.Policy {
	case "idle", "cruise", "":
	default:
		return fmt.Errorf("%w: unknown policy %q", ErrInvalid, c.Generate.Policy)
	}
	return nil
}

func (c *Config) CompareMode() (compare.Mode, error) {
	return compare.ParseMode(c.Mode)
}

// CompareTolerance builds the comparator's field table from the config.
func (c *Config) CompareTolerance() compare.Tolerance {
	t := c.Tolerance
	if t.Exact {
		tol := compare.StrictTolerance()
		tol.RequireEqualLength = t.RequireEqualLength
		if !t.CompareControls {
			tol = tol.With(scenario.FieldControls, compare.FieldRule{Kind: compare.Excluded})
		}
		return tol
	}

	planar := !t.Height
	tol := compare.DefaultTolerance()
	tol.RequireEqualLength = t.RequireEqualLength
	tol = tol.With(scenario.FieldPosition, compare.FieldRule{Kind: compare.Numeric, Decimals: t.PositionDecimals, Planar: planar})
	tol = tol.With(scenario.FieldPolyline, compare.FieldRule{Kind: compare.Numeric, Decimals: t.PositionDecimals, Planar: planar})
	tol = tol.With(scenario.FieldHeading, compare.FieldRule{Kind: compare.Numeric, Decimals: t.HeadingDecimals, Angular: true})
	tol = tol.With(scenario.FieldVelocity, compare.FieldRule{Kind: compare.Numeric, Decimals: t.VelocityDecimals})
	tol = tol.With(scenario.FieldSize, compare.FieldRule{Kind: compare.Numeric, Decimals: t.SizeDecimals})
	if t.CompareControls {
		tol = tol.With(scenario.FieldControls, compare.FieldRule{Kind: compare.Numeric, Decimals: t.PositionDecimals})
	}
	return tol
}

func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{SimDt: c.Extract.SimDt, CheckLastState: c.Extract.CheckLastState}
}

func (c *Config) SynthConfig(id string) synth.Config {
	g := c.Generate
	return synth.Config{
		ID:           id,
		Dt:           g.Dt,
		Steps:        g.Steps,
		Seed:         g.Seed,
		Agents:       g.Agents,
		Speed:        g.Speed,
		SignalPeriod: g.SignalPeriod,
	}
}

// NewGenerator builds a generator with a fresh integrator and ego policy, so
// each call is safe to run on its own goroutine.
func (c *Config) NewGenerator() (*synth.Generator, error) {
	integ, ok := synth.IntegratorByName(c.Generate.Integrator)
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q", ErrInvalid, c.Generate.Integrator)
	}

	var p policy.Policy
	switch c.Generate.Policy {
	case "cruise":
		cruise := policy.NewCruise(c.Generate.Speed, 0)
		for name, v := range c.Generate.PolicyParams {
			cruise.SetParam(name, v)
		}
		p = cruise
	case "idle", "":
		p = policy.Idle()
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalid, c.Generate.Policy)
	}
	return synth.New(synth.NewBicycle(), integ, p), nil
}
