package devices

import (
	"fmt"
	"math"

	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// Polarity selects NPN (+1) or PNP (-1) sign convention for a BJT's
// junction voltages (spec §4.D).
type Polarity float64

const (
	NPN Polarity = 1
	PNP Polarity = -1
)

// BJT is the Ebers-Moll nonlinear device (spec §4.D): three terminals
// (collector, base, emitter) linearized at the current Newton iterate into
// a 3x3 conductance block plus a 3-vector of equivalent currents.
//
// StampHandle.Slots layout: a 3x3 grid indexed [row*3+col] over
// {collector, base, emitter}, i.e. 9 entries; ground-incident rows/columns
// are skipped per entry as usual.
type BJT struct {
	name             string
	c, b, e          mna.NodeIndex
	mc, mb, me       int
	isSat            float64
	betaF, betaR     float64
	vt               float64
	expLimit         float64
	polarity         Polarity
	h                StampHandle
}

// NewBJT builds a bipolar junction transistor with terminals collector c,
// base b, emitter e, saturation current isSat, forward/reverse current
// gains betaF/betaR, and the given polarity.
func NewBJT(mapping *mna.NodeMapping, name string, c, b, e mna.NodeIndex, isSat, betaF, betaR float64, polarity Polarity) (*BJT, error) {
	if isSat <= 0 || betaF <= 0 || betaR <= 0 {
		return nil, fmt.Errorf("NewBJT(%s): Is/betaF/betaR must be positive: %w", name, ErrBadTerminal)
	}

	return &BJT{
		name:     name,
		c:        c,
		b:        b,
		e:        e,
		mc:       resolveNode(mapping, c),
		mb:       resolveNode(mapping, b),
		me:       resolveNode(mapping, e),
		isSat:    isSat,
		betaF:    betaF,
		betaR:    betaR,
		vt:       ThermalVoltage,
		expLimit: DefaultExpLimit,
		polarity: polarity,
	}, nil
}

func (q *BJT) Name() string { return q.name }

func (q *BJT) terminals() [3]int { return [3]int{q.mc, q.mb, q.me} }

func (q *BJT) RegisterPattern(b *sparse.MatrixBuilder) error {
	t := q.terminals()
	ids := make([]int, 9)
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			id, err := pushOrSkip(b, t[col], t[row])
			if err != nil {
				return err
			}
			ids[row*3+col] = id
		}
	}
	q.h.Slots = ids

	return nil
}

func (q *BJT) ResolvePattern(m sparse.EntryMap) { q.h.Resolve(m) }

func (q *BJT) clamp(v float64) float64 {
	limit := q.expLimit * q.vt
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}

	return v
}

func (q *BJT) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	pol := float64(q.polarity)
	vBE := pol * (ctx.At(q.mb) - ctx.At(q.me))
	vBC := pol * (ctx.At(q.mb) - ctx.At(q.mc))
	vBE = q.clamp(vBE)
	vBC = q.clamp(vBC)

	alphaF := q.betaF / (q.betaF + 1)
	alphaR := q.betaR / (q.betaR + 1)

	iF := q.isSat * (math.Exp(vBE/q.vt) - 1)
	gF := q.isSat * math.Exp(vBE/q.vt) / q.vt
	iR := q.isSat * (math.Exp(vBC/q.vt) - 1)
	gR := q.isSat * math.Exp(vBC/q.vt) / q.vt

	// Terminal currents (polarity-normalized space) and their exact
	// linearizations w.r.t. vBE, vBC.
	iC := alphaF*iF - iR
	iB := (1-alphaF)*iF + (1-alphaR)*iR
	iE := -iF + alphaR*iR

	dIc_dVbe := alphaF * gF
	dIc_dVbc := -gR
	dIb_dVbe := (1 - alphaF) * gF
	dIb_dVbc := (1 - alphaR) * gR
	dIe_dVbe := -gF
	dIe_dVbc := alphaR * gR

	// Chain rule: Vbe = pol*(Vb-Ve), Vbc = pol*(Vb-Vc); node voltages in
	// unnormalized (circuit) space are c, b, e in that terminal order. The
	// stamped terminal current is pol*I, so the two polarity factors cancel:
	// d(pol*I)/dVc = -dI/dVbc; d(pol*I)/dVb = dI/dVbe + dI/dVbc;
	// d(pol*I)/dVe = -dI/dVbe.
	stampRow := func(rowSlotBase int, dIdVbe, dIdVbc float64, iTerm float64) float64 {
		dC := -dIdVbc
		dB := dIdVbe + dIdVbc
		dE := -dIdVbe
		addInto(a, q.h.Slots[rowSlotBase+0], dC)
		addInto(a, q.h.Slots[rowSlotBase+1], dB)
		addInto(a, q.h.Slots[rowSlotBase+2], dE)

		return iTerm - dC*ctx.At(q.mc) - dB*ctx.At(q.mb) - dE*ctx.At(q.me)
	}

	iEqC := stampRow(0, dIc_dVbe, dIc_dVbc, pol*iC)
	iEqB := stampRow(3, dIb_dVbe, dIb_dVbc, pol*iB)
	iEqE := stampRow(6, dIe_dVbe, dIe_dVbc, pol*iE)

	// Currents leave the device at each terminal per the computed i_eq
	// (same "from node to ground-reference" convention as Diode: each
	// i_eq is injected as current flowing out of its own terminal).
	if q.mc >= 0 {
		rhs[q.mc] -= iEqC
	}
	if q.mb >= 0 {
		rhs[q.mb] -= iEqB
	}
	if q.me >= 0 {
		rhs[q.me] -= iEqE
	}

	return nil
}
