package config

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nihilo/internal/dynamo"
)

const (
	DefaultPreset        = "solar_system"
	DefaultIntegrator    = "verlet"
	DefaultMotion        = "classic"
	DefaultSoftening     = 1.0
	DefaultControlHz     = 60.0
	DefaultSimulationHz  = 30.0
	DefaultRenderHz      = 60.0
	DefaultTheme         = "space"
	DefaultRadiusScale   = 40.0
	DefaultFadeDistance  = 1500.0
	DefaultLogLevel      = "info"
	DefaultTimeStep      = 86400.0
	DefaultPositionScale = 1e10
)

type Config struct {
	Preset     string `yaml:"preset"`
	PresetFile string `yaml:"preset_file,omitempty"`
	Integrator string `yaml:"integrator"`
	Motion     string `yaml:"motion"`

	// TimeStep and Scale fall back to the preset's values when zero.
	TimeStep  float64 `yaml:"time_step,omitempty"`
	Scale     float64 `yaml:"scale,omitempty"`
	Softening float64 `yaml:"softening"`
	Workers   int     `yaml:"workers"`

	Loops    LoopConfig `yaml:"loops"`
	View     ViewConfig `yaml:"view"`
	LogLevel string     `yaml:"log_level"`
}

// LoopConfig holds the target frequencies of the three loops in Hz.
type LoopConfig struct {
	Control    float64 `yaml:"control"`
	Simulation float64 `yaml:"simulation"`
	Render     float64 `yaml:"render"`
}

type ViewConfig struct {
	Theme        string  `yaml:"theme"`
	RadiusScale  float64 `yaml:"radius_scale"`
	FadeDistance float64 `yaml:"fade_distance"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:     DefaultPreset,
		Integrator: DefaultIntegrator,
		Motion:     DefaultMotion,
		Softening:  DefaultSoftening,
		Loops: LoopConfig{
			Control:    DefaultControlHz,
			Simulation: DefaultSimulationHz,
			Render:     DefaultRenderHz,
		},
		View: ViewConfig{
			Theme:        DefaultTheme,
			RadiusScale:  DefaultRadiusScale,
			FadeDistance: DefaultFadeDistance,
		},
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate checks numeric bounds and the log level. Component names are
// checked when they are resolved.
func (c *Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"time_step", c.TimeStep == 0 || positive(c.TimeStep)},
		{"scale", c.Scale == 0 || positive(c.Scale)},
		{"softening", c.Softening >= 0 && !math.IsInf(c.Softening, 0)},
		{"workers", c.Workers >= 0},
		{"loops.control", positive(c.Loops.Control)},
		{"loops.simulation", positive(c.Loops.Simulation)},
		{"loops.render", positive(c.Loops.Render)},
		{"view.radius_scale", positive(c.View.RadiusScale)},
		{"view.fade_distance", positive(c.View.FadeDistance)},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", dynamo.ErrParameterBounds, check.name)
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// ResolvePreset loads PresetFile when set, or looks Preset up among the
// built-in presets.
func (c *Config) ResolvePreset() (*Preset, error) {
	if c.PresetFile != "" {
		return LoadPreset(c.PresetFile)
	}
	p := GetPreset(c.Preset)
	if p == nil {
		return nil, fmt.Errorf("%w: preset %q", dynamo.ErrUnknownComponent, c.Preset)
	}
	return p, nil
}

// EffectiveTimeStep returns the configured step, the preset's, or the default.
func (c *Config) EffectiveTimeStep(p *Preset) float64 {
	switch {
	case c.TimeStep > 0:
		return c.TimeStep
	case p != nil && p.TimeStep > 0:
		return p.TimeStep
	}
	return DefaultTimeStep
}

func (c *Config) EffectiveScale(p *Preset) float64 {
	switch {
	case c.Scale > 0:
		return c.Scale
	case p != nil && p.Scale > 0:
		return p.Scale
	}
	return DefaultPositionScale
}
