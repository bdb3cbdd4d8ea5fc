package config

import "sort"

// Presets are named analysis settings. Applying one replaces only the
// analysis section.
var Presets = map[string]AnalysisConfig{
	"quick":    {Shuffles: 500, Balanced: true, Workers: 1},
	"standard": {Shuffles: DefaultShuffles, Balanced: true, Workers: 1},
	"thorough": {Shuffles: 20000, Balanced: true, Workers: 4},
	"parallel": {Shuffles: DefaultShuffles, Balanced: true, Workers: 8},
	"lowmem":   {Shuffles: DefaultShuffles, Balanced: true, Sequential: true, Workers: 1},
}

func GetPreset(name string) *AnalysisConfig {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	return &preset
}

// Apply overwrites the analysis section with the named preset, keeping the seed.
func (c *Config) Apply(name string) bool {
	preset := GetPreset(name)
	if preset == nil {
		return false
	}
	seed := c.Analysis.Seed
	c.Analysis = *preset
	c.Analysis.Seed = seed
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
