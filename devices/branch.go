package devices

import "github.com/nodalspice/spicekit/sparse"

// registerBranchIncidence registers the four-entry incidence pattern shared
// by every voltage-defined device that introduces a branch-current unknown
// b (voltage sources, inductors): A[p,b]=+1, A[b,p]=+1, A[n,b]=-1, A[b,n]=-1
// (spec §4.D).
//
// StampHandle.Slots layout: [pb, bp, nb, bn].
func registerBranchIncidence(b *sparse.MatrixBuilder, mp, mn, mb int, h *StampHandle) error {
	ids := make([]int, 4)
	var err error
	if ids[0], err = pushOrSkip(b, mb, mp); err != nil { // A[p,b]: col=b, row=p
		return err
	}
	if ids[1], err = pushOrSkip(b, mp, mb); err != nil { // A[b,p]: col=p, row=b
		return err
	}
	if ids[2], err = pushOrSkip(b, mb, mn); err != nil { // A[n,b]: col=b, row=n
		return err
	}
	if ids[3], err = pushOrSkip(b, mn, mb); err != nil { // A[b,n]: col=n, row=b
		return err
	}
	h.Slots = ids

	return nil
}

// stampBranchIncidence writes the fixed ±1 incidence pattern (it never
// changes across factor/refactor cycles, but is re-written every Stamp to
// keep the rebuild-from-zero convention uniform across all devices).
func stampBranchIncidence(a *sparse.CSC, h *StampHandle) {
	addInto(a, h.Slots[0], 1)
	addInto(a, h.Slots[1], 1)
	addInto(a, h.Slots[2], -1)
	addInto(a, h.Slots[3], -1)
}
