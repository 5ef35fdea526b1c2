package automation

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/config"
	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/storage"
)

const scenarioYAML = `
name: sfh-comparison
description: same catalog under two histories
steps:
  - name: baseline
  - name: fine
    sfh: sfh2
    config:
      bins:
        frequency:
          count: 10
matrix:
  sfh: [sfh3, constant]
`

func TestParseScenarioExpandsMatrix(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, "sfh3", sc.Steps[2].Name)
	assert.Equal(t, "constant", sc.Steps[3].SFH)
}

func TestParseScenarioErrors(t *testing.T) {
	_, err := ParseScenario([]byte("name: empty\n"))
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)

	_, err = ParseScenario([]byte("name: x\nstepz: []\n"))
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestMatrixWithMetallicities(t *testing.T) {
	sc, err := ParseScenario([]byte("matrix:\n  sfh: [table]\n  metallicity: [z02, z001]\n"))
	require.NoError(t, err)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, "table/z001", sc.Steps[1].Name)
	assert.Equal(t, "z001", sc.Steps[1].Metallicity)
}

func TestStepApply(t *testing.T) {
	sc, err := ParseScenario([]byte(scenarioYAML))
	require.NoError(t, err)
	base := config.DefaultConfig()

	cfg, err := sc.Steps[1].Apply(base)
	require.NoError(t, err)
	assert.Equal(t, "sfh2", cfg.SFH.Model)
	assert.Equal(t, 10, cfg.Bins.Frequency.Count)
	assert.Equal(t, config.DefaultLogFMin, cfg.Bins.Frequency.LogMin)
	assert.Equal(t, "md14", base.SFH.Model)
	assert.Equal(t, config.DefaultFrequencyBins, base.Bins.Frequency.Count)

	_, err = ScenarioStep{Preset: "nope"}.Apply(base)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestRunnerRunsAndSaves(t *testing.T) {
	dir := t.TempDir()
	catalog := filepath.Join(dir, "catalog.csv")
	require.NoError(t, os.WriteFile(catalog, []byte(
		"t0,m1,m2,nu0\n100,0.6,0.5,1e-4\n900,0.45,0.4,6e-5\n2000,0.8,0.7,2e-4\n"), 0644))

	base := config.GetPreset("quick")
	base.Population.Path = catalog
	st := storage.New(filepath.Join(dir, "data"))

	l := logrus.New()
	l.SetOutput(io.Discard)
	r := &Runner{Base: base, Store: st, Log: logrus.NewEntry(l)}

	sc, err := ParseScenario([]byte("name: pair\nmatrix:\n  sfh: [md14, sfh4]\n"))
	require.NoError(t, err)
	results, err := r.Run(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		assert.NotEmpty(t, res.RunID)
		assert.Greater(t, res.Omega, 0.0)
	}
	assert.NotEqual(t, results[0].Omega, results[1].Omega)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
