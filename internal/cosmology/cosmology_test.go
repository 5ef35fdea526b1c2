package cosmology

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/integrators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planck(t *testing.T) *Cosmology {
	t.Helper()
	c, err := New(Planck18(), integrators.NewRK4(), 8, 8000)
	require.NoError(t, err)
	return c
}

func TestAgeOfUniverse(t *testing.T) {
	c := planck(t)
	assert.InDelta(t, 13800.0, c.AgeNow(), 100)

	age, err := c.Age(0)
	require.NoError(t, err)
	assert.InDelta(t, c.AgeNow(), age, 1e-9)
}

func TestComovingDistanceAtUnitRedshift(t *testing.T) {
	c := planck(t)
	chi, err := c.Chi(1)
	require.NoError(t, err)
	assert.InDelta(t, 3395.0, chi, 40)
}

func TestLookbackInversion(t *testing.T) {
	c := planck(t)
	for _, z := range []float64{0.05, 0.5, 2, 7.5} {
		lb, err := c.Lookback(z)
		require.NoError(t, err)
		back, err := c.RedshiftAtLookback(lb)
		require.NoError(t, err)
		assert.InDelta(t, z, back, 1e-6, "z=%g", z)
	}
}

func TestOutOfRangeQueries(t *testing.T) {
	c := planck(t)

	_, err := c.Chi(8.5)
	assert.ErrorIs(t, err, dynamo.ErrOutOfRange)

	_, err = c.Age(-0.1)
	var de *dynamo.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, -0.1, de.Query)
}

func TestAgeRedshiftTableIsMonotone(t *testing.T) {
	c := planck(t)
	ages, zs, err := c.AgeRedshiftTable(500)
	require.NoError(t, err)
	require.Len(t, ages, 500)

	assert.Equal(t, 8.0, zs[0])
	assert.Equal(t, 0.0, zs[len(zs)-1])
	for i := 1; i < len(ages); i++ {
		assert.Greater(t, ages[i], ages[i-1])
		assert.Less(t, zs[i], zs[i-1])
	}
}

func TestIntegratorsAgree(t *testing.T) {
	rk4 := planck(t)
	rk45, err := New(Planck18(), integrators.NewRK45(), 8, 8000)
	require.NoError(t, err)

	a, _ := rk4.Chi(3)
	b, _ := rk45.Chi(3)
	assert.InEpsilon(t, a, b, 1e-6)
}

func TestInvalidParams(t *testing.T) {
	_, err := New(Params{H0: 70, OmegaM: 1.2}, integrators.NewRK4(), 8, 100)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestWriteAgeTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAgeTable(&buf, []float64{1, 2}, []float64{3, 2}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"age_myr,z", "1,3", "2,2"}, lines)
}
