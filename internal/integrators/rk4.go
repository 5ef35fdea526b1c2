package integrators

import "github.com/san-kum/gwbsim/internal/dynamo"

var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}
)

// RK4 is the classical fourth order scheme. It reuses its stage buffers
// between steps and so must not be shared across goroutines.
type RK4 struct {
	k   []dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) buffers(n int) {
	if r.k != nil && len(r.tmp) == n {
		return
	}
	r.k = make([]dynamo.State, 4)
	r.tmp = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	r.buffers(len(x))

	r.k[0] = dyn.Derive(x, t)
	for s := 1; s < 4; s++ {
		// each stage steps from x along the previous slope only
		combine(r.tmp, x, rk4Nodes[s]*dt, []float64{1}, r.k[s-1:s])
		r.k[s] = dyn.Derive(r.tmp, t+rk4Nodes[s]*dt)
	}

	out := make(dynamo.State, len(x))
	combine(out, x, dt, rk4Weights, r.k)
	return out
}
