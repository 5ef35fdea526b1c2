package population

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/san-kum/gwbsim/internal/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDerivesColumns(t *testing.T) {
	b, err := New(100, 0.6, 0.4, 1e-4)
	require.NoError(t, err)

	assert.InDelta(t, physics.ChirpMass(0.6, 0.4), b.ChirpMass, 1e-15)
	assert.Greater(t, b.NuMax, b.Nu0)
	assert.InEpsilon(t, physics.InspiralTime(2e-4, 2*b.NuMax, b.K), b.DtMax, 1e-12)
	assert.True(t, b.Merges(b.DtMax*1.01))
	assert.False(t, b.Merges(b.DtMax*0.99))
}

func TestFromSeparationMatchesKepler(t *testing.T) {
	b, err := FromSeparation(50, 0.5, 0.6, 0.6)
	require.NoError(t, err)
	assert.InEpsilon(t, physics.KeplerFrequency(0.5, 0.6, 0.6), b.Nu0, 1e-12)
	assert.Equal(t, 0.5, b.A)
}

func TestReadCSVSkipsAndCounts(t *testing.T) {
	in := strings.Join([]string{
		"t0,m1,m2,nu0",
		"100,0.6,0.4,1e-4",
		"abc,0.6,0.4,1e-4",
		"100,1.6,0.4,1e-4",
		"-5,0.6,0.4,1e-4",
		"100,0.6,0.4,1",
		"100,0.6",
		"200,0.5,0.5,5e-5",
	}, "\n")

	cat, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Len(t, cat.Systems, 2)
	assert.Equal(t, 7, cat.Rows)
	assert.EqualValues(t, 5, cat.SkippedRows())
	assert.EqualValues(t, 2, cat.Skipped.Get("skipped_malformed"))
	assert.EqualValues(t, 1, cat.Skipped.Get("skipped_mass_out_of_range"))
	assert.EqualValues(t, 1, cat.Skipped.Get("skipped_negative_delay"))
	assert.EqualValues(t, 1, cat.Skipped.Get("skipped_born_in_contact"))
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("t0,m1\n1,2\n"))
	assert.Error(t, err)
}

func TestReadCSVEmpty(t *testing.T) {
	cat, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cat.Systems)
	assert.Zero(t, cat.SkippedRows())
}

func TestReadSeBa(t *testing.T) {
	in := "# t0 a m1 m2\n120.5  0.8 0.6 0.55\n\n10 0.05\n30 0.9 0.7 0.3\n"
	cat, err := ReadSeBa(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Rows)
	assert.Len(t, cat.Systems, 2)
	assert.EqualValues(t, 1, cat.Skipped.Get("skipped_malformed"))
	assert.Equal(t, 120.5, cat.Systems[0].T0)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	b, err := FromSeparation(50, 0.5, 0.6, 0.6)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []BinarySystem{b}))

	cat, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, cat.Systems, 1)
	assert.InEpsilon(t, b.DtMax, cat.Systems[0].DtMax, 1e-12)
	assert.InEpsilon(t, b.NuMax, cat.Systems[0].NuMax, 1e-12)
}

func TestReadCSVDerivesDtMaxFromGivenContact(t *testing.T) {
	ref, err := New(100, 0.6, 0.4, 1e-4)
	require.NoError(t, err)
	nuMax := ref.NuMax / 2

	in := "t0,m1,m2,nu0,nu_max\n100,0.6,0.4,1e-4," + strconv.FormatFloat(nuMax, 'g', -1, 64) + "\n"
	cat, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, cat.Systems, 1)

	b := cat.Systems[0]
	assert.Equal(t, nuMax, b.NuMax)
	assert.InEpsilon(t, physics.InspiralTime(2e-4, 2*nuMax, b.K), b.DtMax, 1e-12)
	assert.Less(t, b.DtMax, ref.DtMax)

	in = "t0,m1,m2,nu0,nu_max,Dt_max\n100,0.6,0.4,1e-4," + strconv.FormatFloat(nuMax, 'g', -1, 64) + ",42\n"
	cat, err = ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 42.0, cat.Systems[0].DtMax)
}

func TestReachable(t *testing.T) {
	w := Window{FLow: 1e-5, FHigh: 1, MaxZ: 8, MaxTime: 13000}

	ok, err := New(100, 0.6, 0.6, 1e-4)
	require.NoError(t, err)
	late, err := New(13500, 0.6, 0.6, 1e-4)
	require.NoError(t, err)
	slow, err := New(100, 0.2, 0.2, 1e-7)
	require.NoError(t, err)

	kept, dropped := Reachable([]BinarySystem{ok, late, slow}, w, 2)
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, ok, kept[0])
}
