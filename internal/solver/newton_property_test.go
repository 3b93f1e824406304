package solver

import (
	"context"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestLinearRoots_PropertyBased verifies that for randomly generated linear
// targets f(x) = x - r the solver recovers r from a range of starting
// guesses. Linear targets make Newton's method exact up to the tolerance,
// so every converged result must land within epsilon of the true root.
func TestLinearRoots_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("recovers the root of x - r", prop.ForAll(
		func(r, guess float64) bool {
			nr, err := NewNewtonRaphson(func(x float64) float64 { return x - r }, 1e-6)
			if err != nil {
				t.Logf("constructor error: %v", err)
				return false
			}

			root, err := nr.Find(context.Background(), guess)
			if err != nil {
				t.Logf("Find(%v) for root %v: %v", guess, r, err)
				return false
			}

			return math.Abs(root-r) < 1e-3
		},
		gen.Float64Range(-1e3, 1e3),
		gen.Float64Range(-1e3, 1e3),
	))

	properties.TestingRun(t)
}

// TestCubicResidual_PropertyBased verifies that converged results for
// shifted cubics f(x) = x^3 - c are genuine roots: the residual |f(root)|
// must be small. The cube root is monotone, so Newton converges from any
// finite guess on the same side of zero.
func TestCubicResidual_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("converged cubic results have small residuals", prop.ForAll(
		func(c float64) bool {
			target := func(x float64) float64 { return x*x*x - c }

			nr, err := NewNewtonRaphson(target, 1e-8)
			if err != nil {
				t.Logf("constructor error: %v", err)
				return false
			}

			root, err := nr.Find(context.Background(), 10)
			if err != nil {
				t.Logf("Find for c=%v: %v", c, err)
				return false
			}

			return math.Abs(target(root)) < 1e-3 && math.Abs(root-math.Cbrt(c)) < 1e-3
		},
		gen.Float64Range(1, 1e3),
	))

	properties.TestingRun(t)
}
