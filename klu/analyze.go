package klu

import (
	"fmt"

	"github.com/nodalspice/spicekit/ordering"
	"github.com/nodalspice/spicekit/sparse"
)

// Analyze performs the symbolic analysis stage (spec §4.C.1): optionally
// detect block-triangular form via maximum transversal + Tarjan SCC, order
// each diagonal block with AMD, and estimate per-block fill for Numeric's
// initial allocation.
//
// Stage 1: BTF (or a single block covering the whole matrix).
// Stage 2: per-block AMD, embedded into the global P/Q.
// Stage 3: fill estimate bookkeeping and nzoff accounting.
func Analyze(a *sparse.CSC, cfg Config) (*Symbolic, error) {
	n := a.N
	if len(a.ColPtr) != n+1 {
		return nil, fmt.Errorf("Analyze: %w", ErrNotSquare)
	}

	var blockR []int
	var blockQcols []int // Q in BTF (pre-AMD) order, column space
	var blockP []int     // P in BTF (pre-AMD) order, row space
	structRank := n

	if cfg.BTF {
		bs, trans, err := ordering.BTF(a)
		if err != nil {
			return nil, fmt.Errorf("Analyze: %w", err)
		}
		blockR = bs.R
		blockQcols = bs.Q
		blockP = bs.P
		structRank = trans.Matched
	} else {
		blockR = []int{0, n}
		blockQcols = identity(n)
		blockP = identity(n)
	}

	nblocks := len(blockR) - 1
	P := make([]int, n)
	Q := make([]int, n)
	lnzEst := make([]int, nblocks)
	unzEst := make([]int, nblocks)
	maxBlock := 0

	for b := 0; b < nblocks; b++ {
		lo, hi := blockR[b], blockR[b+1]
		size := hi - lo
		if size > maxBlock {
			maxBlock = size
		}

		blockCols := blockQcols[lo:hi]
		blockRows := blockP[lo:hi]

		if size > DefaultMaxBlock0 {
			sub := extractBlock(a, blockRows, blockCols)
			sym := ordering.BuildAAT(sub)
			perm, info, err := ordering.AMD(sym)
			if err != nil {
				return nil, fmt.Errorf("Analyze: block %d: %w", b, err)
			}
			for k, localCol := range perm.Perm {
				Q[lo+k] = blockCols[localCol]
				P[lo+k] = blockRows[localCol]
			}
			lnzEst[b] = info.Lnz + size
			unzEst[b] = info.Lnz + size
		} else {
			copy(Q[lo:hi], blockCols)
			copy(P[lo:hi], blockRows)
			lnzEst[b] = size * (size + 1) / 2
			unzEst[b] = size * (size + 1) / 2
		}
	}

	nzoff := countOffBlock(a, P, Q, blockR)

	return &Symbolic{
		N:              n,
		Nnz:            a.Nnz(),
		NBlocks:        nblocks,
		MaxBlock:       maxBlock,
		StructuralRank: structRank,
		P:              P,
		Q:              Q,
		R:              blockR,
		LnzEst:         lnzEst,
		UnzEst:         unzEst,
		NzOff:          nzoff,
	}, nil
}

func identity(n int) []int {
	id := make([]int, n)
	for i := range id {
		id[i] = i
	}

	return id
}

// extractBlock builds the size(rows)×size(cols) submatrix A[rows, cols]
// (both same length, a diagonal block) as a fresh CSC for AMD's consumption.
// The local row/column numbering is the position within the rows/cols
// slice, i.e. local index k corresponds to original row rows[k] (resp.
// column cols[k]).
func extractBlock(a *sparse.CSC, rows, cols []int) *sparse.CSC {
	size := len(cols)
	origToLocalRow := make(map[int]int, size)
	for k, r := range rows {
		origToLocalRow[r] = k
	}

	mb, _ := sparse.NewMatrixBuilder(size, size)
	for localCol, origCol := range cols {
		colRows, colVals := a.Col(origCol)
		for idx, origRow := range colRows {
			if localRow, ok := origToLocalRow[origRow]; ok {
				_, _ = mb.Push(localCol, localRow, colVals[idx])
			}
		}
	}
	sub, _ := mb.BuildCSC()

	return sub
}

// countOffBlock counts nonzeros of A that fall outside every diagonal
// block once A is permuted by (P, Q): for column Q[k] in block b, a
// nonzero at original row r is "off" when P⁻¹[r] lies outside block b's
// row range.
func countOffBlock(a *sparse.CSC, p, q, r []int) int {
	n := a.N
	pinv := make([]int, n)
	for k, row := range p {
		pinv[row] = k
	}

	nblocks := len(r) - 1
	blockOfPos := make([]int, n)
	for b := 0; b < nblocks; b++ {
		for k := r[b]; k < r[b+1]; k++ {
			blockOfPos[k] = b
		}
	}

	count := 0
	for b := 0; b < nblocks; b++ {
		for k := r[b]; k < r[b+1]; k++ {
			col := q[k]
			rows, _ := a.Col(col)
			for _, origRow := range rows {
				pos := pinv[origRow]
				if blockOfPos[pos] != b {
					count++
				}
			}
		}
	}

	return count
}
