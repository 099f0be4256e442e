package devices

import (
	"fmt"
	"math"

	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// ThermalVoltage is the default Vt = kT/q at room temperature (spec §4.D
// leaves Vt/exp_limit as model parameters; these are the conventional SPICE
// defaults).
const ThermalVoltage = 0.025852

// DefaultExpLimit clamps V_d to exp_limit·n·Vt to keep the Shockley
// exponential from overflowing during early Newton iterations (spec §4.D).
const DefaultExpLimit = 40.0

// Diode is the Shockley-companion nonlinear device (spec §4.D): linearized
// at the current Newton iterate into a conductance g and equivalent current
// i_eq, stamped with the same four-entry pattern as a resistor between its
// anode (p) and cathode (n).
//
// StampHandle.Slots layout: [pp, pn, np, nn] (same as Resistor).
type Diode struct {
	name     string
	p, n     mna.NodeIndex
	mp, mn   int
	is       float64 // saturation current
	emission float64 // emission coefficient N
	vt       float64
	expLimit float64
	h        StampHandle
}

// NewDiode builds a diode between anode p and cathode n with saturation
// current is > 0 and emission coefficient n > 0 (SPICE's model parameter
// `N`, not to be confused with the node index type).
func NewDiode(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, is, emission float64) (*Diode, error) {
	if is <= 0 || emission <= 0 {
		return nil, fmt.Errorf("NewDiode(%s): Is=%g N=%g must be positive: %w", name, is, emission, ErrBadTerminal)
	}

	return &Diode{
		name:     name,
		p:        p,
		n:        n,
		mp:       resolveNode(mapping, p),
		mn:       resolveNode(mapping, n),
		is:       is,
		emission: emission,
		vt:       ThermalVoltage,
		expLimit: DefaultExpLimit,
	}, nil
}

func (d *Diode) Name() string { return d.name }

func (d *Diode) RegisterPattern(b *sparse.MatrixBuilder) error {
	return registerConductanceStamp(b, d.mp, d.mn, &d.h)
}

func (d *Diode) ResolvePattern(m sparse.EntryMap) { d.h.Resolve(m) }

func (d *Diode) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	vd := ctx.At(d.mp) - ctx.At(d.mn)

	limit := d.expLimit * d.emission * d.vt
	if vd > limit {
		vd = limit
	} else if vd < -limit {
		vd = -limit
	}

	nvt := d.emission * d.vt
	ev := math.Exp(vd / nvt)
	i := d.is * (ev - 1)
	g := d.is * ev / nvt
	iEq := i - g*vd

	stampConductance(a, &d.h, g)
	// current from p to n (spec §4.D).
	if d.mp >= 0 {
		rhs[d.mp] -= iEq
	}
	if d.mn >= 0 {
		rhs[d.mn] += iEq
	}

	return nil
}
