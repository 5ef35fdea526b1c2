package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE dx/dt = f(x, t). For cosmological integrals the
// independent variable is redshift or scale factor rather than time.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator chooses its own steps between t0 and t1, starting
// from dt0, and reports how many it accepted.
type AdaptiveIntegrator interface {
	Integrator
	Integrate(dyn System, x0 State, t0, t1, dt0 float64) (State, int, error)
}

// Observer receives progress after each catalog system has been binned.
// Implementations are called from worker goroutines.
type Observer interface {
	OnSystem(done, total int)
}

type ObserverFunc func(done, total int)

func (f ObserverFunc) OnSystem(done, total int) { f(done, total) }

// Mode selects the variable the epoch bins are linear in.
type Mode string

const (
	ModeRedshift Mode = "redshift"
	ModeTime     Mode = "time"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRedshift, ModeTime:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: integration mode %q", ErrInvalidConfig, s)
}
