package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors shared by the gwbsim packages.
var (
	// ErrOutOfRange indicates an interpolation query outside the tabulated domain.
	ErrOutOfRange = errors.New("gwb: query outside tabulated domain")

	// ErrNonMonotone indicates a lookup table whose abscissa is not strictly monotone.
	ErrNonMonotone = errors.New("gwb: table is not strictly monotone")

	// ErrEmptyTable indicates a lookup table with fewer than two rows.
	ErrEmptyTable = errors.New("gwb: table needs at least two rows")

	// ErrInvalidConfig indicates a configuration that cannot produce a run.
	ErrInvalidConfig = errors.New("gwb: invalid configuration")

	// ErrUnknownModel indicates a star-formation history name that is not registered.
	ErrUnknownModel = errors.New("gwb: unknown star formation history")

	// ErrCoalesced indicates an inspiral asked to evolve past coalescence.
	ErrCoalesced = errors.New("gwb: binary coalesces before requested time")

	// ErrInvalidState indicates NaN or Inf in an integrated table.
	ErrInvalidState = errors.New("gwb: invalid state (NaN or Inf detected)")

	// ErrShapeMismatch indicates grids with different bin layouts.
	ErrShapeMismatch = errors.New("gwb: grid shapes differ")
)

// DomainError wraps ErrOutOfRange with the offending query.
type DomainError struct {
	Table   string
	Query   float64
	Lo, Hi  float64
	Wrapped error
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %v: %g not in [%g, %g]", e.Table, e.Wrapped, e.Query, e.Lo, e.Hi)
}

func (e *DomainError) Unwrap() error {
	return e.Wrapped
}

// RowError records why a catalog row was rejected.
type RowError struct {
	Line    int
	Reason  string
	Wrapped error
}

func (e *RowError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *RowError) Unwrap() error {
	return e.Wrapped
}
