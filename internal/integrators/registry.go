package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator %q (available: %v)", dynamo.ErrInvalidConfig, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// combine writes x + h * sum(w[i] * k[i]) into dst. Zero weights are
// skipped and w may be shorter than k.
func combine(dst, x dynamo.State, h float64, w []float64, k []dynamo.State) {
	copy(dst, x)
	for s, ws := range w {
		if ws == 0 {
			continue
		}
		for i := range dst {
			dst[i] += h * ws * k[s][i]
		}
	}
}

// Integrate advances x0 from t0 to t1. Adaptive integrators control their
// own step starting from (t1-t0)/n; fixed step ones take n steps.
func Integrate(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, t0, t1 float64, n int) (dynamo.State, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: integration needs at least one step", dynamo.ErrInvalidConfig)
	}
	dt := (t1 - t0) / float64(n)
	if a, ok := integ.(dynamo.AdaptiveIntegrator); ok {
		x, _, err := a.Integrate(dyn, x0, t0, t1, dt)
		return x, err
	}
	states, err := Tabulate(dyn, integ, x0, t0, dt, n)
	if err != nil {
		return nil, err
	}
	return states[len(states)-1], nil
}

// Tabulate integrates dyn from t0 in n uniform steps of dt and returns the
// n+1 states including the initial one.
func Tabulate(dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, t0, dt float64, n int) ([]dynamo.State, error) {
	states := make([]dynamo.State, 0, n+1)
	x := x0.Clone()
	states = append(states, x)

	for i := 0; i < n; i++ {
		t := t0 + float64(i)*dt
		x = integ.Step(dyn, x, t, dt)
		if !x.IsValid() {
			return states, fmt.Errorf("step %d (t=%g): %w", i, t, dynamo.ErrInvalidState)
		}
		states = append(states, x)
	}

	return states, nil
}
