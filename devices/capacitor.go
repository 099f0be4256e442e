package devices

import (
	"fmt"

	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// Capacitor is a two-terminal linear device, DC-open and, in transient
// analysis, linearized into a companion conductance + equivalent current
// source each time step (spec §4.D): Backward Euler (g=C/h, i_eq=g·Vprev)
// or Trapezoidal (g=2C/h, i_eq=-g·Vprev-Iprev).
//
// StampHandle.Slots layout: [pp, pn, np, nn] (same as Resistor).
type Capacitor struct {
	name   string
	p, n   mna.NodeIndex
	mp, mn int
	farads float64
	h      StampHandle
}

// NewCapacitor builds a capacitor between nodes p and n with capacitance
// farads > 0.
func NewCapacitor(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, farads float64) (*Capacitor, error) {
	if farads <= 0 {
		return nil, fmt.Errorf("NewCapacitor(%s): non-positive capacitance %g: %w", name, farads, ErrBadTerminal)
	}

	return &Capacitor{
		name:   name,
		p:      p,
		n:      n,
		mp:     resolveNode(mapping, p),
		mn:     resolveNode(mapping, n),
		farads: farads,
	}, nil
}

func (c *Capacitor) Name() string { return c.name }

func (c *Capacitor) RegisterPattern(b *sparse.MatrixBuilder) error {
	return registerConductanceStamp(b, c.mp, c.mn, &c.h)
}

func (c *Capacitor) ResolvePattern(m sparse.EntryMap) { c.h.Resolve(m) }

// Voltage returns the terminal voltage implied by the given iterate (used
// by the transient driver, via the integrator, to build the next step's
// companion history).
func (c *Capacitor) Voltage(x []float64) float64 {
	return at(x, c.mp) - at(x, c.mn)
}

// Current returns the capacitor current implied by the companion model's
// conductance g and the given terminal voltage, for a converged iterate
// (spec §4.E.3 step c: I_cap = g·(V_now − V_prev) − I_prev_recorded).
func (c *Capacitor) Current(g, vNow, vPrev, iPrev float64) float64 {
	return g*(vNow-vPrev) - iPrev
}

// Conductance returns the companion conductance for the given integrator
// and step size (spec §4.D).
func (c *Capacitor) Conductance(integrator Integrator, step float64) float64 {
	if integrator == Trapezoidal {
		return 2 * c.farads / step
	}

	return c.farads / step
}

func (c *Capacitor) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	if ctx == nil || !ctx.Transient {
		return nil // DC OP: capacitors are open, not stamped (spec §4.D)
	}

	hist := ctx.CompanionHistory(c.name)
	g := c.Conductance(ctx.Integrator, ctx.Step)
	var iEq float64
	switch ctx.Integrator {
	case Trapezoidal:
		iEq = -g*hist.VPrev - hist.IPrev
	default: // BackwardEuler
		iEq = g * hist.VPrev
	}

	stampConductance(a, &c.h, g)
	// i_eq injected as a current source from n to p (spec §4.D).
	if c.mp >= 0 {
		rhs[c.mp] += iEq
	}
	if c.mn >= 0 {
		rhs[c.mn] -= iEq
	}

	return nil
}

func at(x []float64, i int) float64 {
	if i < 0 || i >= len(x) {
		return 0
	}

	return x[i]
}
