package analysis

import (
	"fmt"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
)

// DCSweep sweeps sweep.Source from V0 to V1 in steps of Step, running
// Newton at each point from the previous point's solution (spec §4.E.2,
// "continuation"). The first point reuses the circuit's analyze+factor
// (via circuit.newton); every later point and every later Newton iteration
// refactors the same pattern.
func DCSweep(deck *mna.Deck, sweep mna.DcCommand, cfg NewtonConfig) (*mna.DcSweepResult, error) {
	if sweep.Step == 0 {
		return nil, fmt.Errorf("DCSweep: %w", ErrBadStep)
	}

	c, err := newCircuit(deck)
	if err != nil {
		return nil, fmt.Errorf("DCSweep: %w", err)
	}
	setSource, err := c.sourceSetter(sweep.Source)
	if err != nil {
		return nil, fmt.Errorf("DCSweep: %w", err)
	}

	var (
		x      []float64
		points []mna.DcSweepPoint
	)
	for v, more := sweep.V0, true; more; v, more = nextSweepValue(v, sweep) {
		setSource(v)
		x, err = c.newton(x, devices.StampContext{}, cfg)
		if err != nil {
			return nil, fmt.Errorf("DCSweep: %s=%g: %w", sweep.Source, v, err)
		}
		points = append(points, mna.DcSweepPoint{Point: c.extractResult(x), SweepValue: v})
	}

	return &mna.DcSweepResult{Results: points}, nil
}

// nextSweepValue advances the sweep by Step, reporting whether the
// advanced value is still within [V0,V1] (ascending or descending
// depending on Step's sign).
func nextSweepValue(v float64, sweep mna.DcCommand) (float64, bool) {
	const eps = 1e-12
	next := v + sweep.Step
	if sweep.Step > 0 {
		return next, next <= sweep.V1+eps
	}

	return next, next >= sweep.V1-eps
}
