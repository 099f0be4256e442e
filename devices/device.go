package devices

import (
	"github.com/nodalspice/spicekit/mna"
	"github.com/nodalspice/spicekit/sparse"
)

// Integrator selects the companion-model formula a Capacitor uses during
// transient analysis (spec §4.D, §4.E.3).
type Integrator int

const (
	// BackwardEuler: g = C/h, i_eq = g*Vprev.
	BackwardEuler Integrator = iota
	// Trapezoidal: g = 2C/h, i_eq = -g*Vprev - Iprev.
	Trapezoidal
)

// CompanionState is a capacitor's previous-step history (spec §9,
// "companion-model coupling"): owned by the integrator driving the
// transient loop, not by the device, so devices stay pure linearizations
// of the current iterate.
type CompanionState struct {
	VPrev, IPrev float64
}

// StampContext carries everything a device's Stamp needs beyond its own
// fixed parameters: the current Newton iterate (all zeros on the first
// iteration), and for transient
// analysis the integrator, step size, and per-device companion history the
// integrator owns.
type StampContext struct {
	X          []float64 // current iterate, length mapping.MNAMatrixDim(); zero-filled on the first Newton iteration
	Transient  bool
	Step       float64
	Integrator Integrator
	History    map[string]CompanionState // device name -> previous-step state
}

// At returns ctx.X[i], or 0 if the iterate isn't available yet (the first
// Newton iteration) or i is the ground sentinel (-1).
func (ctx *StampContext) At(i int) float64 {
	if ctx == nil || ctx.X == nil || i < 0 || i >= len(ctx.X) {
		return 0
	}

	return ctx.X[i]
}

// CompanionHistory looks up a device's previous-step state, defaulting to
// the zero state for the first time step.
func (ctx *StampContext) CompanionHistory(name string) CompanionState {
	if ctx == nil || ctx.History == nil {
		return CompanionState{}
	}

	return ctx.History[name]
}

// StampHandle holds the pre-resolved nnz slots a device writes into on
// every Stamp call, indexed positionally per device type (see each device's
// doc comment for its slot layout). A slot value of -1 means "one terminal
// was ground; skip this write" (spec §4.D, "ground-incident terminals skip
// the corresponding writes").
type StampHandle struct {
	Slots []int
}

// Resolve overwrites each recorded EntryID in place with its final nnz
// slot (or leaves -1 alone for a ground-skipped entry).
func (h *StampHandle) Resolve(m sparse.EntryMap) {
	for i, id := range h.Slots {
		h.Slots[i] = resolveSlot(m, id)
	}
}

// Device is satisfied by every circuit element. Pattern registration is
// two-phase, mirroring the builder's entry-id -> nnz-slot indirection
// (spec §4.A): RegisterPattern issues (col,row) requests and remembers
// their EntryIDs; once every device has registered and the whole matrix's
// pattern is built, ResolvePattern translates those EntryIDs into the
// StampHandle's final nnz slots. Stamp then writes values straight into
// those slots on every factor/refactor cycle — no runtime searching.
type Device interface {
	mna.Device
	RegisterPattern(b *sparse.MatrixBuilder) error
	ResolvePattern(m sparse.EntryMap)
	Stamp(a *sparse.CSC, rhs []float64, ctx *StampContext) error
}

// resolveNode returns the MNA matrix row/column for a node, or -1 for
// ground.
func resolveNode(m *mna.NodeMapping, n mna.NodeIndex) int {
	idx, ok := m.MNANodeIndex(n)
	if !ok {
		return -1
	}

	return idx
}

// pushOrSkip registers one (col,row) pattern entry unless either mapped
// index is the ground sentinel (-1), returning the resolved EntryID or -1.
func pushOrSkip(b *sparse.MatrixBuilder, col, row int) (int, error) {
	if col < 0 || row < 0 {
		return -1, nil
	}
	id, err := b.Push(col, row, 0)
	if err != nil {
		return -1, err
	}

	return int(id), nil
}

// resolveSlot translates an EntryID recorded during RegisterPattern into
// its final nnz slot, preserving the -1 ("ground, skip") sentinel.
func resolveSlot(m sparse.EntryMap, id int) int {
	if id < 0 {
		return -1
	}

	return m[id]
}

// addInto adds delta into a.Values at slot, unless slot is -1 (ground-skip).
func addInto(a *sparse.CSC, slot int, delta float64) {
	if slot < 0 {
		return
	}
	*a.GetMutNnz(slot) += delta
}
