package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultShuffles = 5000
	DefaultWorkers  = 1
	DefaultDataDir  = ".tuna"

	DefaultAngles = 16
	DefaultTrials = 5
	DefaultNoise  = 0.5
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	DataDir    string           `yaml:"data_dir"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// AnalysisConfig mirrors permutation.Options.
type AnalysisConfig struct {
	Shuffles   int   `yaml:"shuffles"`
	Balanced   bool  `yaml:"balanced"`
	Sequential bool  `yaml:"sequential"`
	Workers    int   `yaml:"workers"`
	Seed       int64 `yaml:"seed"`
}

// SimulationConfig describes synthetic tuning data for the simulate command.
type SimulationConfig struct {
	A0     float64 `yaml:"a0"`
	A1     float64 `yaml:"a1"`
	A2     float64 `yaml:"a2"`
	Theta  float64 `yaml:"theta"`
	W      float64 `yaml:"w"`
	Angles int     `yaml:"angles"`
	Trials int     `yaml:"trials"`
	Noise  float64 `yaml:"noise"`
}

func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir,
		Analysis: AnalysisConfig{
			Shuffles: DefaultShuffles,
			Balanced: true,
			Workers:  DefaultWorkers,
		},
		Simulation: SimulationConfig{
			A0:     1,
			A1:     5,
			A2:     2,
			Theta:  1,
			W:      8,
			Angles: DefaultAngles,
			Trials: DefaultTrials,
			Noise:  DefaultNoise,
		},
	}
}

// Load reads a yaml file on top of base, or on top of the defaults when
// base is nil. Keys missing from the file keep their base value.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if base != nil {
		copied := *base
		cfg = &copied
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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
	switch {
	case c.Analysis.Shuffles < 1:
		return fmt.Errorf("%w: analysis.shuffles must be at least 1, got %d", ErrInvalidConfig, c.Analysis.Shuffles)
	case c.Analysis.Workers < 0:
		return fmt.Errorf("%w: analysis.workers must not be negative, got %d", ErrInvalidConfig, c.Analysis.Workers)
	case c.Simulation.Angles < 1:
		return fmt.Errorf("%w: simulation.angles must be at least 1, got %d", ErrInvalidConfig, c.Simulation.Angles)
	case c.Simulation.Trials < 1:
		return fmt.Errorf("%w: simulation.trials must be at least 1, got %d", ErrInvalidConfig, c.Simulation.Trials)
	case c.Simulation.Noise < 0:
		return fmt.Errorf("%w: simulation.noise must not be negative, got %g", ErrInvalidConfig, c.Simulation.Noise)
	case c.Simulation.W <= 0:
		return fmt.Errorf("%w: simulation.w must be positive, got %g", ErrInvalidConfig, c.Simulation.W)
	}
	return nil
}
