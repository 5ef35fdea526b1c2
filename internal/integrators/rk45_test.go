package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// decay is dx/dt = -x with x(t) = exp(-t).
type decay struct{}

func (decay) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{-x[0]} }
func (decay) StateDim() int                                 { return 1 }

func TestRK45FixedStepsTrackExponential(t *testing.T) {
	r := NewRK45()
	states, err := Tabulate(decay{}, r, dynamo.State{1}, 0, 0.05, 100)
	require.NoError(t, err)
	assert.InEpsilon(t, math.Exp(-5), states[100][0], 1e-8)
}

func TestRK45OscillatorAmplitude(t *testing.T) {
	r := NewRK45()
	x := dynamo.State{1, 0}
	for i := 0; i < 10000; i++ {
		x = r.Step(oscillator{}, x, float64(i)*0.01, 0.01)
	}
	amp := math.Hypot(x[0], x[1])
	assert.InDelta(t, 1.0, amp, 1e-6)
}

func TestRK45StepSuggestion(t *testing.T) {
	r := NewRK45()

	_, tight, err := r.StepAdaptive(oscillator{}, dynamo.State{1, 0}, 0, 0.1, 1e-14)
	require.NoError(t, err)
	assert.Less(t, tight, 0.1)
	assert.Positive(t, tight)

	_, loose, err := r.StepAdaptive(oscillator{}, dynamo.State{1, 0}, 0, 0.1, 1e-2)
	require.NoError(t, err)
	assert.Greater(t, loose, 0.1)
}

type blowUp struct{}

func (blowUp) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{math.Inf(1)} }
func (blowUp) StateDim() int                                 { return 1 }

func TestRK45InvalidState(t *testing.T) {
	_, _, err := NewRK45().Integrate(blowUp{}, dynamo.State{0}, 0, 1, 0.1)
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}
