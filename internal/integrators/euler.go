package integrators

import "github.com/san-kum/gwbsim/internal/dynamo"

// Euler is first order and only useful for checking convergence of the
// higher order schemes.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	out := make(dynamo.State, len(x))
	combine(out, x, dt, []float64{1}, []dynamo.State{dyn.Derive(x, t)})
	return out
}
