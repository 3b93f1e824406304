package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Common errors returned by root finders
var (
	// ErrNonConvergence is returned when the iteration fails to settle
	// within the configured tolerance before the iteration limit is reached.
	ErrNonConvergence = errors.New("root finder failed to converge")

	// ErrZeroDerivative is returned when the derivative estimate vanishes,
	// which would make the Newton step divide by zero.
	ErrZeroDerivative = errors.New("derivative estimate is zero")

	// ErrNilTarget is returned when a NewtonRaphson is constructed without
	// a target function.
	ErrNilTarget = errors.New("target function cannot be nil")

	// ErrInvalidEpsilon is returned when the tolerance is not a positive
	// finite number.
	ErrInvalidEpsilon = errors.New("epsilon must be a positive finite number")
)

// TargetFunc is the function whose root is being sought.
type TargetFunc func(x float64) float64

// RootFinder computes an approximate root of some target function from an
// initial estimate. Implementations carry their own tolerance; Find refines
// the estimate until successive estimates differ by less than that tolerance.
// Version: 1.0
type RootFinder interface {
	// Find computes an approximate root starting from the given guess.
	Find(ctx context.Context, guess float64) (float64, error)
}

// DefaultMaxIterations bounds the Newton iteration when no explicit limit
// is configured.
const DefaultMaxIterations = 200

// derivativeStep is the half-width of the central-difference stencil used
// to estimate f'(x).
const derivativeStep = 1e-6

// NewtonRaphson finds roots of a target function with the Newton-Raphson
// iteration x' = x - f(x)/f'(x), estimating the derivative numerically with
// a central difference. Instances are immutable and safe for concurrent use.
type NewtonRaphson struct {
	target        TargetFunc
	epsilon       float64
	maxIterations int
}

// NewNewtonRaphson creates a NewtonRaphson solver for the given target
// function and convergence tolerance.
// Returns an error if the target is nil or the tolerance is not a positive
// finite number.
func NewNewtonRaphson(target TargetFunc, epsilon float64) (*NewtonRaphson, error) {
	if target == nil {
		return nil, ErrNilTarget
	}

	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) || epsilon <= 0 {
		return nil, ErrInvalidEpsilon
	}

	return &NewtonRaphson{
		target:        target,
		epsilon:       epsilon,
		maxIterations: DefaultMaxIterations,
	}, nil
}

// Find computes an approximate root starting from the given guess. It
// refines the estimate until two successive estimates differ by less than
// the configured epsilon, and fails with ErrNonConvergence once the
// maximum iteration count is exhausted or an estimate becomes non-finite, or with
// ErrZeroDerivative when the derivative estimate vanishes.
func (n *NewtonRaphson) Find(ctx context.Context, guess float64) (float64, error) {
	x := guess

	for i := 0; i < n.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("root finding cancelled: %w", err)
		}

		deriv := n.derivative(x)
		if deriv == 0 {
			return 0, fmt.Errorf("%w at x=%g after %d iterations", ErrZeroDerivative, x, i)
		}

		next := x - n.target(x)/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, fmt.Errorf("%w: estimate became non-finite at iteration %d", ErrNonConvergence, i)
		}

		if math.Abs(next-x) < n.epsilon {
			return next, nil
		}

		x = next
	}

	return 0, fmt.Errorf("%w within %d iterations (epsilon=%g)", ErrNonConvergence, n.maxIterations, n.epsilon)
}

// derivative estimates f'(x) with a central difference.
func (n *NewtonRaphson) derivative(x float64) float64 {
	return (n.target(x+derivativeStep) - n.target(x-derivativeStep)) / (2 * derivativeStep)
}

// DefaultTarget is the function solved by the deployed service:
// f(x) = x^3 + 2, with a single real root at -2^(1/3).
func DefaultTarget(x float64) float64 {
	return x*x*x + 2
}
