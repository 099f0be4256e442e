package devices

import (
	"fmt"

	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// Resistor is a two-terminal linear conductance (spec §4.D): unconditional
// ohmic stamp, the same pattern Capacitor and Diode reuse for their own
// conductance contributions.
//
// StampHandle.Slots layout: [pp, pn, np, nn].
type Resistor struct {
	name string
	p, n mna.NodeIndex
	mp, mn int
	g    float64
	h    StampHandle
}

// NewResistor builds a resistor between nodes p and n with resistance
// ohms > 0.
func NewResistor(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, ohms float64) (*Resistor, error) {
	if ohms <= 0 {
		return nil, fmt.Errorf("NewResistor(%s): non-positive resistance %g: %w", name, ohms, ErrBadTerminal)
	}

	return &Resistor{
		name: name,
		p:    p,
		n:    n,
		mp:   resolveNode(mapping, p),
		mn:   resolveNode(mapping, n),
		g:    1 / ohms,
	}, nil
}

func (r *Resistor) Name() string { return r.name }

func (r *Resistor) RegisterPattern(b *sparse.MatrixBuilder) error {
	return registerConductanceStamp(b, r.mp, r.mn, &r.h)
}

func (r *Resistor) ResolvePattern(m sparse.EntryMap) { r.h.Resolve(m) }

func (r *Resistor) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	stampConductance(a, &r.h, r.g)

	return nil
}

// registerConductanceStamp registers the four-entry [pp,pn,np,nn] pattern
// shared by every two-terminal conductance stamp (resistor, companion
// capacitor, diode linearized conductance).
func registerConductanceStamp(b *sparse.MatrixBuilder, mp, mn int, h *StampHandle) error {
	ids := make([]int, 4)
	var err error
	if ids[0], err = pushOrSkip(b, mp, mp); err != nil {
		return err
	}
	if ids[1], err = pushOrSkip(b, mn, mp); err != nil {
		return err
	}
	if ids[2], err = pushOrSkip(b, mp, mn); err != nil {
		return err
	}
	if ids[3], err = pushOrSkip(b, mn, mn); err != nil {
		return err
	}
	h.Slots = ids

	return nil
}

// stampConductance adds the ohmic +g/-g pattern (spec §4.D) into a's
// already-resolved [pp,pn,np,nn] slots.
func stampConductance(a *sparse.CSC, h *StampHandle, g float64) {
	addInto(a, h.Slots[0], g)
	addInto(a, h.Slots[1], -g)
	addInto(a, h.Slots[2], -g)
	addInto(a, h.Slots[3], g)
}
