package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/interp"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "redshift", cfg.Mode)
	assert.Equal(t, "md14", cfg.SFH.Model)
	assert.Equal(t, 50, cfg.Bins.Frequency.Count)
	assert.Equal(t, 20, cfg.Bins.Epoch.Count)
	assert.Equal(t, interp.Reject, cfg.Policy())
	assert.Equal(t, 3.4e6, cfg.Normalization.Mass)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
mode: time
bins:
  epoch:
    count: 12
sfh:
  model: sfh3
cosmology:
  h0: 70
interpolation:
  out_of_range: clamp
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "time", cfg.Mode)
	assert.Equal(t, 12, cfg.Bins.Epoch.Count)
	assert.Equal(t, DefaultMaxZ, cfg.Bins.Epoch.MaxZ)
	assert.Equal(t, 70.0, cfg.Cosmology.H0)
	assert.Equal(t, 0.30966, cfg.Cosmology.OmegaM)
	assert.Equal(t, interp.Clamp, cfg.Policy())
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("bins:\n  frequency:\n    cnt: 4\n"))
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Mode = "lookback" }},
		{"frequency count", func(c *Config) { c.Bins.Frequency.Count = 0 }},
		{"frequency range", func(c *Config) { c.Bins.Frequency.LogMax = c.Bins.Frequency.LogMin }},
		{"epoch count", func(c *Config) { c.Bins.Epoch.Count = 0 }},
		{"max z", func(c *Config) { c.Bins.Epoch.MaxZ = -1 }},
		{"hubble", func(c *Config) { c.Cosmology.H0 = 0 }},
		{"integrator", func(c *Config) { c.Cosmology.Integrator = "leapfrog" }},
		{"normalization", func(c *Config) { c.Normalization.Mass = 0 }},
		{"components", func(c *Config) { c.Components.Bulk, c.Components.Birth, c.Components.Merger = false, false, false }},
		{"policy", func(c *Config) { c.Interpolation.OutOfRange = "wrap" }},
		{"table without path", func(c *Config) { c.SFH.Model = "table" }},
		{"format", func(c *Config) { c.Population.Format = "hdf5" }},
		{"workers", func(c *Config) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), dynamo.ErrInvalidConfig)
		})
	}

	cfg := DefaultConfig()
	cfg.Mode = "lookback"
	cfg.Workers = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lookback")
	assert.Contains(t, err.Error(), "workers")
}

func TestValidateUnknownSFH(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SFH.Model = "md15"
	assert.ErrorIs(t, cfg.Validate(), dynamo.ErrUnknownModel)

	cfg = DefaultConfig()
	cfg.SFH.Model, cfg.SFH.Table, cfg.SFH.Metallicity = "table", "sfrd.csv", "z07"
	assert.ErrorIs(t, cfg.Validate(), dynamo.ErrUnknownModel)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("quick")
	require.NotNil(t, cfg)
	cfg.Output.Tag = "round-trip"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("time")
	require.NotNil(t, cfg)
	assert.Equal(t, "time", cfg.Mode)
	require.NoError(t, cfg.Validate())

	assert.Nil(t, GetPreset("nonexistent"))
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	assert.Contains(t, names, "thesis")
	assert.IsIncreasing(t, names)
	for _, name := range names {
		assert.NoError(t, GetPreset(name).Validate(), name)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := GetPreset("lisa")
	opts, err := cfg.EngineOptions()
	require.NoError(t, err)
	assert.Equal(t, 30, opts.Frequency.Len())
	assert.InDelta(t, 1e-4, opts.Frequency.Lo(), 1e-16)
	assert.Equal(t, dynamo.ModeRedshift, opts.Mode)
	assert.True(t, opts.Include.Merger)
}
