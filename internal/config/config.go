// Package config loads and saves sweep configuration files.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/verisim/verisim/internal/phys"
	"github.com/verisim/verisim/internal/stats"
	"github.com/verisim/verisim/internal/sweep"
)

const (
	DefaultDuration = 10.0
	DefaultRadius   = 0.5
	DefaultHeight   = 10.0
	DefaultSpin     = 2.0
	DefaultStepSize = 0.001
	DefaultIters    = 50
	DefaultGravity  = -1.0
)

type Config struct {
	Grid     sweep.Grid     `yaml:"grid"`
	Scenario sweep.Scenario `yaml:"scenario"`

	// Kinds is the statistic schema shared by every bundle in the sweep.
	Kinds string `yaml:"kinds"`

	Workers  int    `yaml:"workers"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig is the six-mass calibration sweep: a spinning sphere
// dropped through 10 s of gravity with no applied force.
func DefaultConfig() *Config {
	return &Config{
		Grid: sweep.Grid{
			Engines:    []string{"analytic", "symplectic", "rk4"},
			Iterations: []int{DefaultIters},
			StepSizes:  []float64{DefaultStepSize},
			Masses:     []float64{0.1, 1.0, 10.0, 100.0, 1000.0, 10000.0},
			Gravities:  []float64{DefaultGravity},
			Forces:     []float64{0.0},
			Tolerances: []float64{0.0},
		},
		Scenario: sweep.Scenario{
			Duration:          DefaultDuration,
			Radius:            DefaultRadius,
			InitialPosition:   phys.Vec3{Z: DefaultHeight},
			InitialAngularVel: phys.Vec3{Z: DefaultSpin},
		},
		Kinds:    "MaxAbs,Variance,Mean",
		Workers:  1,
		DataDir:  ".verisim",
		LogLevel: "INFO",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Write marshals the config as YAML to w.
func Write(w io.Writer, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ParseKinds resolves the configured schema tokens.
func (c *Config) ParseKinds() ([]stats.Kind, error) {
	return stats.ParseKinds(c.Kinds)
}

func (c *Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	if c.Scenario.Duration <= 0 {
		return fmt.Errorf("config: duration must be positive, got %g", c.Scenario.Duration)
	}
	if c.Scenario.Radius <= 0 {
		return fmt.Errorf("config: radius must be positive, got %g", c.Scenario.Radius)
	}
	if _, err := c.ParseKinds(); err != nil {
		return err
	}
	return nil
}
