package analysis

import (
	"fmt"
	"math"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/klu"
)

// NewtonConfig bounds one Newton iteration (spec §4.E.1 step 5) and carries
// the klu.Config used to factor/refactor the Jacobian at every iteration.
//
// Logf, when non-nil, is called once per iteration with the iteration index
// and whether that iteration converged; it defaults to a no-op, matching the
// teacher's silent-by-default library convention (no log.Printf on the hot
// path unless a caller opts in).
type NewtonConfig struct {
	AbsTol   float64
	RelTol   float64
	MaxIters int
	KLU      klu.Config
	Logf     func(format string, args ...any)
}

// DefaultNewtonConfig returns spec §4.E.1's defaults: abs_tol=1e-12,
// rel_tol=1e-3, max_iters=100.
func DefaultNewtonConfig() NewtonConfig {
	return NewtonConfig{
		AbsTol:   1e-12,
		RelTol:   1e-3,
		MaxIters: 100,
		KLU:      klu.DefaultConfig(),
	}
}

func (cfg NewtonConfig) logf(format string, args ...any) {
	if cfg.Logf != nil {
		cfg.Logf(format, args...)
	}
}

// newton runs Newton's method to a fixed point (spec §4.E.1): repeatedly
// stamp at the current iterate, factor (first call) or refactor
// (thereafter), solve, and check componentwise convergence. x0 is the
// initial guess (nil means the implicit zero vector); ctxTemplate supplies
// the transient/companion fields, left zero-valued for a DC operating
// point.
func (c *circuit) newton(x0 []float64, ctxTemplate devices.StampContext, cfg NewtonConfig) ([]float64, error) {
	x := make([]float64, c.n)
	copy(x, x0)
	rhs := make([]float64, c.n)

	for iter := 0; iter < cfg.MaxIters; iter++ {
		ctx := ctxTemplate
		ctx.X = x
		if err := c.stampAll(rhs, &ctx); err != nil {
			return nil, fmt.Errorf("newton: %w", err)
		}
		if err := c.factorOrRefactor(cfg.KLU); err != nil {
			return nil, fmt.Errorf("newton: %w", err)
		}

		xNext := make([]float64, c.n)
		copy(xNext, rhs)
		if err := klu.Solve(c.sym, c.num, c.n, 1, xNext); err != nil {
			return nil, fmt.Errorf("newton: solve: %w", err)
		}

		converged := newtonConverged(x, xNext, cfg.AbsTol, cfg.RelTol)
		cfg.logf("newton: iter=%d converged=%v", iter, converged)
		if converged {
			return xNext, nil
		}
		x = xNext
	}

	return nil, fmt.Errorf("newton: %w", ErrNotConverged)
}

// newtonConverged implements spec §4.E.1 step 5: for every unknown i,
// |x'_i - x_i| <= abs_tol + rel_tol*max(|x'_i|, |x_i|).
func newtonConverged(prev, next []float64, absTol, relTol float64) bool {
	for i := range next {
		bound := absTol + relTol*math.Max(math.Abs(next[i]), math.Abs(prev[i]))
		if math.Abs(next[i]-prev[i]) > bound {
			return false
		}
	}

	return true
}
