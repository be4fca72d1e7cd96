package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/EnderRifter/StarSim-sub000/internal/physics"
	"github.com/EnderRifter/StarSim-sub000/internal/sim"
)

const (
	DefaultDt             = 0.001
	DefaultSteps          = 2000
	DefaultSampleEvery    = 10
	DefaultG              = 1.0
	DefaultSoftening      = 0.05
	DefaultTheta          = 0.5
	DefaultUniverseRadius = 100.0
	DefaultBodies         = 200
	DefaultCentralMass    = 1000.0
	DefaultBodyMass       = 0.01
	DefaultMinRadius      = 5.0
	DefaultMaxRadius      = 50.0
	DefaultThickness      = 1.0
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name          string          `yaml:"name"`
	Updater       string          `yaml:"updater"`
	Integrator    string          `yaml:"integrator"`
	Dt            float64         `yaml:"dt"`
	Steps         int             `yaml:"steps"`
	SampleEvery   int             `yaml:"sample_every"`
	Seed          uint64          `yaml:"seed"`
	Generation    uint32          `yaml:"generation"`
	ValidateState bool            `yaml:"validate_state"`
	Physics       PhysicsConfig   `yaml:"physics"`
	Generator     GeneratorConfig `yaml:"generator"`
}

type PhysicsConfig struct {
	G              float64 `yaml:"g"`
	Softening      float64 `yaml:"softening"`
	Theta          float64 `yaml:"theta"`
	UniverseRadius float64 `yaml:"universe_radius"`
}

type GeneratorConfig struct {
	Kind        string  `yaml:"kind"`
	Bodies      int     `yaml:"bodies"`
	CentralMass float64 `yaml:"central_mass"`
	BodyMass    float64 `yaml:"body_mass"`
	MinRadius   float64 `yaml:"min_radius"`
	MaxRadius   float64 `yaml:"max_radius"`
	Thickness   float64 `yaml:"thickness"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "default",
		Updater:     "barneshut",
		Integrator:  "symplectic",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		SampleEvery: DefaultSampleEvery,
		Seed:        1,
		Physics: PhysicsConfig{
			G:              DefaultG,
			Softening:      DefaultSoftening,
			Theta:          DefaultTheta,
			UniverseRadius: DefaultUniverseRadius,
		},
		Generator: GeneratorConfig{
			Kind:        "disk",
			Bodies:      DefaultBodies,
			CentralMass: DefaultCentralMass,
			BodyMass:    DefaultBodyMass,
			MinRadius:   DefaultMinRadius,
			MaxRadius:   DefaultMaxRadius,
			Thickness:   DefaultThickness,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	return Merge(path, DefaultConfig())
}

// Merge reads a YAML file over a copy of base. Keys absent from the file
// keep base's values.
func Merge(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
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

// Clone returns a copy that can be modified without touching presets.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks the numeric settings. Updater, integrator and generator
// names are resolved by the experiment registry.
func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	case c.SampleEvery < 1:
		return fmt.Errorf("%w: sample_every must be at least 1, got %d", ErrInvalidConfig, c.SampleEvery)
	case c.Physics.G < 0:
		return fmt.Errorf("%w: g must not be negative, got %g", ErrInvalidConfig, c.Physics.G)
	case c.Physics.Softening < 0:
		return fmt.Errorf("%w: softening must not be negative, got %g", ErrInvalidConfig, c.Physics.Softening)
	case c.Physics.Theta < 0:
		return fmt.Errorf("%w: theta must not be negative, got %g", ErrInvalidConfig, c.Physics.Theta)
	case c.Physics.UniverseRadius <= 0:
		return fmt.Errorf("%w: universe_radius must be positive, got %g", ErrInvalidConfig, c.Physics.UniverseRadius)
	case c.Generator.Bodies < 1:
		return fmt.Errorf("%w: generator needs at least one body, got %d", ErrInvalidConfig, c.Generator.Bodies)
	case !(c.Generator.BodyMass > 0):
		return fmt.Errorf("%w: body_mass must be positive, got %g", ErrInvalidConfig, c.Generator.BodyMass)
	case c.Generator.Kind != "cluster" && !(c.Generator.CentralMass > 0):
		return fmt.Errorf("%w: %s generator needs a positive central_mass, got %g", ErrInvalidConfig, c.Generator.Kind, c.Generator.CentralMass)
	case c.Generator.MinRadius < 0 || c.Generator.MaxRadius < c.Generator.MinRadius:
		return fmt.Errorf("%w: radius range [%g, %g] is empty", ErrInvalidConfig, c.Generator.MinRadius, c.Generator.MaxRadius)
	case c.Generator.MaxRadius > c.Physics.UniverseRadius:
		return fmt.Errorf("%w: max_radius %g exceeds universe_radius %g", ErrInvalidConfig, c.Generator.MaxRadius, c.Physics.UniverseRadius)
	}
	return nil
}

func (c *Config) Gravity() physics.Gravity {
	return physics.NewGravity(c.Physics.G, c.Physics.Softening)
}

func (c *Config) Params() sim.Params {
	return sim.Params{
		Gravity:        c.Gravity(),
		Theta:          c.Physics.Theta,
		UniverseRadius: c.Physics.UniverseRadius,
	}
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		SampleEvery:   c.SampleEvery,
		ValidateState: c.ValidateState,
	}
}
