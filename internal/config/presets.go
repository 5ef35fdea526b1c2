package config

import (
	"sort"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Presets adjust the defaults for common runs.
var Presets = map[string]func(*Config){
	"thesis": func(c *Config) {},
	"quick": func(c *Config) {
		c.Bins.Frequency.Count = 20
		c.Bins.Epoch = EpochBins{Count: 8, MaxZ: 4}
		c.Cosmology.Steps = 4000
		c.Tables.Points = 2000
	},
	"time": func(c *Config) {
		c.Mode = string(dynamo.ModeTime)
	},
	"constant": func(c *Config) {
		c.SFH.Model = "constant"
	},
	"lisa": func(c *Config) {
		c.Bins.Frequency = FrequencyBins{Count: 30, LogMin: -4, LogMax: -1}
	},
	"no-mergers": func(c *Config) {
		c.Components.Merger = false
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
