package metrics

import (
	"fmt"
	"math"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

// Solver bounds. Rates are per period.
const (
	LowerBound    = -0.99
	UpperBound    = 10.0
	scanSteps     = 1000
	MaxIterations = 200
	Tolerance     = 1e-7
	minBracket    = 1e-14
)

// NPV discounts flows at rate; flows[0] is undiscounted
func NPV(rate float64, flows []float64) float64 {
	npv := 0.0
	growth := 1 + rate
	for t, flow := range flows {
		npv += flow / math.Pow(growth, float64(t))
	}
	return npv
}

// IRR finds the per-period rate at which NPV(flows) is zero.
// Logic:
//  1. Require at least one inflow and one outflow
//  2. Scan [LowerBound, UpperBound] from the bottom for the first sign change
//  3. Narrow the bracket with a secant step and a bisection step per iteration
//
// Returns ErrNoConvergence when no bracket exists or MaxIterations is exhausted.
func IRR(flows []float64) (float64, error) {
	var hasIn, hasOut bool
	for _, f := range flows {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: cash flows are not finite", domain.ErrNoConvergence)
		}
		hasIn = hasIn || f > 0
		hasOut = hasOut || f < 0
	}
	if !hasIn || !hasOut {
		return 0, fmt.Errorf("%w: cash flows never change sign", domain.ErrNoConvergence)
	}

	a, fa, b, fb, ok := bracket(flows)
	if !ok {
		return 0, fmt.Errorf("%w: no rate in [%.2f, %.2f] zeroes NPV", domain.ErrNoConvergence, LowerBound, UpperBound)
	}
	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}

	for i := 0; i < MaxIterations; i++ {
		// secant through the bracket ends, falling back to the midpoint
		x := a - fa*(b-a)/(fb-fa)
		if !(x > a && x < b) {
			x = (a + b) / 2
		}
		fx := NPV(x, flows)
		if math.Abs(fx) <= Tolerance {
			return x, nil
		}
		if sameSign(fx, fa) {
			a, fa = x, fx
		} else {
			b, fb = x, fx
		}

		m := (a + b) / 2
		fm := NPV(m, flows)
		if math.Abs(fm) <= Tolerance || b-a <= minBracket {
			return m, nil
		}
		if sameSign(fm, fa) {
			a, fa = m, fm
		} else {
			b, fb = m, fm
		}
	}

	return 0, fmt.Errorf("%w: no root within %d iterations", domain.ErrNoConvergence, MaxIterations)
}

// bracket returns the first grid interval whose ends straddle (or hit) zero
func bracket(flows []float64) (a, fa, b, fb float64, ok bool) {
	step := (UpperBound - LowerBound) / scanSteps
	a = LowerBound
	fa = NPV(a, flows)
	for i := 1; i <= scanSteps; i++ {
		b = LowerBound + step*float64(i)
		fb = NPV(b, flows)
		if fa == 0 || fb == 0 || !sameSign(fa, fb) {
			return a, fa, b, fb, true
		}
		a, fa = b, fb
	}
	return 0, 0, 0, 0, false
}

func sameSign(x, y float64) bool {
	return (x < 0) == (y < 0)
}
