package config

import (
	"maps"
	"slices"
)

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"strict": func() *Config {
		cfg := DefaultConfig()
		cfg.Tolerance.Exact = true
		cfg.Tolerance.RequireEqualLength = true
		cfg.Tolerance.CompareControls = true
		cfg.Tolerance.Height = true
		return cfg
	},
	"loose": func() *Config {
		cfg := DefaultConfig()
		cfg.Tolerance.PositionDecimals = 1
		cfg.Tolerance.HeadingDecimals = 2
		cfg.Tolerance.VelocityDecimals = 0
		cfg.Tolerance.SizeDecimals = 2
		return cfg
	},
	"ego": func() *Config {
		cfg := DefaultConfig()
		cfg.Mode = "ego_only"
		return cfg
	},
	"cruise": func() *Config {
		cfg := DefaultConfig()
		cfg.Generate.Policy = "cruise"
		cfg.Generate.Agents = 4
		cfg.Generate.Steps = 200
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	f, ok := Presets[name]
	if !ok {
		return nil
	}
	return f()
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
