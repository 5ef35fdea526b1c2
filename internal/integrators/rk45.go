package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Dormand-Prince 5(4) tableau. dpErr is the difference between the fifth
// and embedded fourth order weights, including the FSAL seventh stage.
var (
	dpNodes = [7]float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1}
	dpA     = [7][]float64{
		nil,
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	}
	dpErr = []float64{
		35.0/384 - 5179.0/57600,
		0,
		500.0/1113 - 7571.0/16695,
		125.0/192 - 393.0/640,
		-2187.0/6784 + 92097.0/339200,
		11.0/84 - 187.0/2100,
		-1.0 / 40,
	}
)

// RK45 is the Dormand-Prince pair. Step takes one fifth order step of the
// requested size so fixed grids stay uniform; StepAdaptive and Integrate
// control the step from the embedded error estimate.
type RK45 struct {
	Tol      float64
	safety   float64
	minScale float64
	maxScale float64
	maxSteps int
}

func NewRK45() *RK45 {
	return &RK45{Tol: 1e-10, safety: 0.9, minScale: 0.2, maxScale: 5, maxSteps: 1_000_000}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	out, _, _ := r.StepAdaptive(dyn, x, t, dt, r.Tol)
	return out
}

// StepAdaptive returns the fifth order state after dt and the step size
// the error estimate suggests next.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	out, ratio, err := r.stage(dyn, x, t, dt, tol)
	if err != nil {
		return out, dt * r.minScale, err
	}
	return out, r.nextStep(dt, ratio), nil
}

// stage runs the seven stages and returns the fifth order state with its
// error relative to tol.
func (r *RK45) stage(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	k := make([]dynamo.State, 7)
	k[0] = dyn.Derive(x, t)
	for s := 1; s < 6; s++ {
		xs := make(dynamo.State, len(x))
		combine(xs, x, dt, dpA[s], k[:s])
		k[s] = dyn.Derive(xs, t+dpNodes[s]*dt)
	}
	out := make(dynamo.State, len(x))
	combine(out, x, dt, dpA[6], k[:6])
	if !out.IsValid() {
		return out, math.Inf(1), dynamo.ErrInvalidState
	}
	k[6] = dyn.Derive(out, t+dt)
	return out, r.errorRatio(x, out, dt, k, tol), nil
}

func (r *RK45) errorRatio(x, out dynamo.State, dt float64, k []dynamo.State, tol float64) float64 {
	est := make(dynamo.State, len(x))
	combine(est, make(dynamo.State, len(x)), dt, dpErr, k)
	worst := 0.0
	for i := range x {
		scale := 1 + math.Max(math.Abs(x[i]), math.Abs(out[i]))
		worst = math.Max(worst, math.Abs(est[i])/scale)
	}
	return worst / tol
}

func (r *RK45) nextStep(dt, ratio float64) float64 {
	switch {
	case ratio == 0:
		return dt * r.maxScale
	case ratio > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	default:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	}
}

// Integrate advances x0 from t0 to t1 with step control, starting from
// dt0. Steps whose error exceeds Tol are retried smaller.
func (r *RK45) Integrate(dyn dynamo.System, x0 dynamo.State, t0, t1, dt0 float64) (dynamo.State, int, error) {
	x, t, dt := x0.Clone(), t0, dt0
	eps := 1e-12 * math.Max(1, math.Abs(t1-t0))
	for steps := 0; steps < r.maxSteps; steps++ {
		if t1-t <= eps {
			return x, steps, nil
		}
		dt = math.Min(dt, t1-t)
		next, ratio, err := r.stage(dyn, x, t, dt, r.Tol)
		if err != nil {
			return x, steps, fmt.Errorf("t=%g: %w", t, err)
		}
		if ratio > 1 && dt > eps {
			dt = r.nextStep(dt, ratio)
			continue
		}
		x, t, dt = next, t+dt, r.nextStep(dt, ratio)
	}
	return x, r.maxSteps, fmt.Errorf("no convergence after %d steps between %g and %g", r.maxSteps, t0, t1)
}

var _ dynamo.AdaptiveIntegrator = (*RK45)(nil)
