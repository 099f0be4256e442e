package klu

import "github.com/nodalspice/spicekit/sparse"

// buildOffDiagonal assembles Offp/Offi/Offx (spec §3, §4.C.2): the entries
// of PAQ that fall outside every diagonal block, stored in CSC form indexed
// by the global pivotal column position. Requires num.Pinv to already be
// fully populated across every block.
func (num *Numeric) buildOffDiagonal(a *sparse.CSC, sym *Symbolic) {
	n := sym.N
	blockOfPos := make([]int, n)
	for b := 0; b < sym.NBlocks; b++ {
		for k := sym.R[b]; k < sym.R[b+1]; k++ {
			blockOfPos[k] = b
		}
	}

	mb, _ := sparse.NewMatrixBuilder(n, n)
	for k := 0; k < n; k++ {
		origCol := sym.Q[k]
		b := blockOfPos[k]
		rows, vals := a.Col(origCol)
		for idx, origRow := range rows {
			pos := num.Pinv[origRow]
			if blockOfPos[pos] == b {
				continue // handled inside the block's own LU
			}
			v := vals[idx]
			if num.Rs != nil {
				v /= num.Rs[origRow]
			}
			_, _ = mb.Push(k, pos, v)
		}
	}

	off, _ := mb.BuildCSC()
	num.Offp = off.ColPtr
	num.Offi = off.RowIdx
	num.Offx = off.Values
}
