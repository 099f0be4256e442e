package devices

import (
	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// VoltageSource is a voltage-defined device: branch-current unknown b,
// incidence pattern identical to Inductor, rhs[b] = V (spec §4.D).
type VoltageSource struct {
	name       string
	p, n       mna.NodeIndex
	branch     mna.BranchIndex
	mp, mn, mb int
	volts      float64
	h          StampHandle
}

// NewVoltageSource builds an independent voltage source of value volts
// between nodes p (+) and n (-), occupying the given branch-current
// unknown.
func NewVoltageSource(mapping *mna.NodeMapping, name string, p, n mna.NodeIndex, branch mna.BranchIndex, volts float64) *VoltageSource {
	return &VoltageSource{
		name:   name,
		p:      p,
		n:      n,
		branch: branch,
		mp:     resolveNode(mapping, p),
		mn:     resolveNode(mapping, n),
		mb:     mapping.MNABranchIndex(branch),
		volts:  volts,
	}
}

func (v *VoltageSource) Name() string { return v.name }

// SetVoltage updates the source value (used by DC sweep continuation,
// spec §4.E.2, to patch the swept source's value between points).
func (v *VoltageSource) SetVoltage(volts float64) { v.volts = volts }

// Voltage returns the source's current value.
func (v *VoltageSource) Voltage() float64 { return v.volts }

func (v *VoltageSource) RegisterPattern(b *sparse.MatrixBuilder) error {
	return registerBranchIncidence(b, v.mp, v.mn, v.mb, &v.h)
}

func (v *VoltageSource) ResolvePattern(m sparse.EntryMap) { v.h.Resolve(m) }

func (v *VoltageSource) Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error {
	stampBranchIncidence(a, &v.h)
	rhs[v.mb] += v.volts

	return nil
}
