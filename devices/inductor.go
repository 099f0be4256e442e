package devices

import (
	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// Inductor is a voltage-defined device: it introduces a branch-current
// unknown and stamps the same ±1 incidence pattern as a VoltageSource with
// rhs[b]=0 (spec §4.D: "rhs[b] = v (or 0 for an inductor in DC OP)").
//
// Transient inductor dynamics (an L/h companion model dual to Capacitor's)
// are out of scope here, matching the reference implementation's own
// unimplemented transient inductor path — see DESIGN.md.
type Inductor struct {
	name   string
	p, n   mna.NodeIndex
	branch mna.BranchIndex
	mp, mn, mb int
	henries float64
	h       StampHandle
}

// NewInductor builds an inductor between nodes p and n occupying the given
// branch-current unknown.
func NewInductor(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, branch mna.BranchIndex, henries float64) *Inductor {
	return &Inductor{
		name:    name,
		p:       p,
		n:       n,
		branch:  branch,
		mp:      resolveNode(mapping, p),
		mn:      resolveNode(mapping, n),
		mb:      mapping.MNABranchIndex(branch),
		henries: henries,
	}
}

func (l *Inductor) Name() string { return l.name }

func (l *Inductor) RegisterPattern(b *sparse.MatrixBuilder) error {
	return registerBranchIncidence(b, l.mp, l.mn, l.mb, &l.h)
}

func (l *Inductor) ResolvePattern(m sparse.EntryMap) { l.h.Resolve(m) }

func (l *Inductor) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	stampBranchIncidence(a, &l.h)
	rhs[l.mb] += 0

	return nil
}
