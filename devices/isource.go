package devices

import (
	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// CurrentSource is an independent current source from node n to node p:
// rhs[p] += I, rhs[n] -= I (spec §4.D). It contributes no matrix entries,
// so RegisterPattern is a no-op and its StampHandle is unused.
type CurrentSource struct {
	name   string
	p, n   mna.NodeIndex
	mp, mn int
	amps   float64
}

// NewCurrentSource builds an independent current source of value amps
// flowing from node n to node p.
func NewCurrentSource(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, amps float64) *CurrentSource {
	return &CurrentSource{
		name: name,
		p:    p,
		n:    n,
		mp:   resolveNode(mapping, p),
		mn:   resolveNode(mapping, n),
		amps: amps,
	}
}

func (c *CurrentSource) Name() string { return c.name }

func (c *CurrentSource) SetCurrent(amps float64) { c.amps = amps }

func (c *CurrentSource) RegisterPattern(b *sparse.MatrixBuilder) error { return nil }

func (c *CurrentSource) ResolvePattern(m sparse.EntryMap) {}

func (c *CurrentSource) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	if c.mp >= 0 {
		rhs[c.mp] += c.amps
	}
	if c.mn >= 0 {
		rhs[c.mn] -= c.amps
	}

	return nil
}
