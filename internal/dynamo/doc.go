// Package dynamo provides the primitives shared across gwbsim.
//
// The package defines the numeric and error vocabulary used by the
// cosmology integrals, the lookup tables and the binning engine:
//
//   - [State]: vector state of an integrated quantity
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Observer]: progress hook called once per binned catalog system
//   - [DomainError]: out-of-range interpolation query
//   - [RowError]: rejected catalog row
//
// # Parallelism
//
// [Partition] splits a catalog into contiguous worker chunks and
// [ParallelFor] runs a function over them. Callers own any state the
// function writes; the helpers do no synchronisation beyond waiting.
package dynamo
