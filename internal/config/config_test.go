package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.Shuffles != 5000 {
		t.Errorf("expected 5000 shuffles, got %d", cfg.Analysis.Shuffles)
	}
	if !cfg.Analysis.Balanced {
		t.Error("expected balanced weighting by default")
	}
	if cfg.Analysis.Sequential {
		t.Error("expected vectorised shuffles by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuna.yaml")

	cfg := DefaultConfig()
	cfg.Analysis.Shuffles = 1234
	cfg.Analysis.Seed = 42
	cfg.Simulation.Theta = 2.5
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  workers: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := DefaultConfig()
	base.Apply("quick")
	cfg, err := Load(path, base)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.Workers != 3 {
		t.Errorf("expected workers 3, got %d", cfg.Analysis.Workers)
	}
	if cfg.Analysis.Shuffles != 500 {
		t.Errorf("expected preset shuffles 500 to survive, got %d", cfg.Analysis.Shuffles)
	}
	if base.Analysis.Workers != 1 {
		t.Error("load must not modify the base config")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml"), nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("analysis: [1, 2"), 0644)
	if _, err := Load(bad, nil); err == nil {
		t.Error("expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("analysis:\n  shuffles: 0\n"), 0644)
	if _, err := Load(invalid, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero shuffles", func(c *Config) { c.Analysis.Shuffles = 0 }},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }},
		{"no angles", func(c *Config) { c.Simulation.Angles = 0 }},
		{"no trials", func(c *Config) { c.Simulation.Trials = 0 }},
		{"negative noise", func(c *Config) { c.Simulation.Noise = -1 }},
		{"zero width", func(c *Config) { c.Simulation.W = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("quick")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	if p.Shuffles != 500 {
		t.Errorf("expected 500 shuffles, got %d", p.Shuffles)
	}

	p.Shuffles = 1
	if Presets["quick"].Shuffles != 500 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	cfg := DefaultConfig()
	if cfg.Apply("nonexistent") {
		t.Error("expected Apply to report unknown preset")
	}
}

func TestApplyKeepsSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.Seed = 7
	if !cfg.Apply("lowmem") {
		t.Fatal("expected lowmem preset")
	}
	if !cfg.Analysis.Sequential {
		t.Error("expected sequential shuffles")
	}
	if cfg.Analysis.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Analysis.Seed)
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}
