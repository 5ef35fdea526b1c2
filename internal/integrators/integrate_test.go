package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

func TestIntegrateFixedAndAdaptive(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			integ, err := New(name)
			require.NoError(t, err)

			x, err := Integrate(quadrature{}, integ, dynamo.State{0}, 0, 2, 4000)
			require.NoError(t, err)
			tol := 1e-9
			if name == "euler" {
				tol = 1e-2
			}
			assert.InDelta(t, 8.0, x[0], tol)
		})
	}
}

func TestRK45IntegrateFullPeriod(t *testing.T) {
	r := NewRK45()
	x, steps, err := r.Integrate(oscillator{}, dynamo.State{1, 0}, 0, 2*math.Pi, 0.01)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x[0], 1e-7)
	assert.InDelta(t, 0.0, x[1], 1e-7)
	assert.Positive(t, steps)
}

func TestIntegrateRejectsZeroSteps(t *testing.T) {
	_, err := Integrate(quadrature{}, NewRK4(), dynamo.State{0}, 0, 1, 0)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestCombine(t *testing.T) {
	dst := make(dynamo.State, 2)
	combine(dst, dynamo.State{1, 1}, 0.5, []float64{2, 0, 1}, []dynamo.State{{1, 0}, nil, {0, 4}})
	assert.Equal(t, dynamo.State{2, 3}, dst)
}
