package klu

import (
	"fmt"
	"math"

	"github.com/nodalspice/spicekit/sparse"
)

// Factor performs the full numerical factorization (spec §4.C.2): per
// block, left-looking LU with partial pivoting, symmetric pruning, and
// growable packed storage. Pivot order is rediscovered from scratch; use
// Refactor to reuse a prior pivot order when only values changed.
//
// Stage 1 (per pivot column k): symbolic reach set via DFS over the
// transposed L pattern.
// Stage 2: scatter A's permuted column into the dense workspace.
// Stage 3: numeric triangular solve against already-committed L columns.
// Stage 4: partial pivoting with diagonal preference.
// Stage 5: commit L and U columns.
// Stage 6: symmetric pruning of L columns touched by this pivot's U entries.
func Factor(a *sparse.CSC, sym *Symbolic, cfg Config) (*Numeric, error) {
	if a.N != sym.N {
		return nil, fmt.Errorf("Factor: %w", ErrDimensionMismatch)
	}

	num := &Numeric{
		sym:           sym,
		lu:            make([][]luEntry, sym.NBlocks),
		Lip:           make([][]int, sym.NBlocks),
		Uip:           make([][]int, sym.NBlocks),
		Llen:          make([][]int, sym.NBlocks),
		Ulen:          make([][]int, sym.NBlocks),
		Udiag:         make([]float64, sym.N),
		Pnum:          make([]int, sym.N),
		Pinv:          make([]int, sym.N),
		NumericalRank: sym.N,
		x:             make([]float64, sym.MaxBlock),
		flag:          make([]int, sym.MaxBlock),
		apPos:         make([]int, sym.MaxBlock),
		lpend:         make([]int, sym.MaxBlock),
		stack:         make([]int, sym.MaxBlock),
	}

	if cfg.Scale != ScaleNone {
		num.Rs = computeRowScale(a, cfg.Scale)
	}

	for b := 0; b < sym.NBlocks; b++ {
		if err := num.factorBlock(a, sym, b, cfg); err != nil {
			return nil, fmt.Errorf("Factor: block %d: %w", b, err)
		}
	}

	num.buildOffDiagonal(a, sym)

	if num.Rs != nil {
		num.Rs = permuteScaleToPivotal(num.Rs, num.Pnum)
	}

	return num, nil
}

// computeRowScale computes Rs[i] per spec §4.C.3, guarding against a fully
// empty row (no device should ever stamp an all-zero row of the MNA
// matrix, but a defensive guard below still applies after the fact).
func computeRowScale(a *sparse.CSC, mode ScaleMode) []float64 {
	n := a.N
	rs := make([]float64, n)
	for j := 0; j < n; j++ {
		rows, vals := a.Col(j)
		for idx, i := range rows {
			v := math.Abs(vals[idx])
			switch mode {
			case ScaleSum:
				rs[i] += v
			case ScaleMax:
				if v > rs[i] {
					rs[i] = v
				}
			}
		}
	}
	for i := range rs {
		if rs[i] <= 0 {
			rs[i] = 1
		}
	}

	return rs
}

func (num *Numeric) factorBlock(a *sparse.CSC, sym *Symbolic, b int, cfg Config) error {
	lo, hi := sym.R[b], sym.R[b+1]
	size := hi - lo
	if size == 0 {
		return nil
	}

	x := num.x[:size]
	flag := num.flag[:size]
	lpend := num.lpend[:size]
	stack := num.stack[:size]
	for i := 0; i < size; i++ {
		flag[i] = -1
		lpend[i] = -1
		x[i] = 0
	}

	localPinv := make([]int, size)
	for i := range localPinv {
		localPinv[i] = -1
	}
	origToLocalRow := make(map[int]int, size)
	for k := 0; k < size; k++ {
		origToLocalRow[sym.P[lo+k]] = k
	}

	lu := make([]luEntry, 0, sym.LnzEst[b]+sym.UnzEst[b])
	Lip := make([]int, size)
	Uip := make([]int, size)
	Llen := make([]int, size)
	Ulen := make([]int, size)

	for k := 0; k < size; k++ {
		origCol := sym.Q[lo+k]

		// Stage 2: scatter.
		rows, vals := a.Col(origCol)
		var present []int
		for idx, origRow := range rows {
			lr, ok := origToLocalRow[origRow]
			if !ok {
				continue // off-block: handled by buildOffDiagonal after all blocks factor
			}
			v := vals[idx]
			if num.Rs != nil {
				v /= num.Rs[origRow]
			}
			if x[lr] == 0 {
				present = append(present, lr)
			}
			x[lr] += v
		}
		if x[k] == 0 && localPinv[k] == -1 {
			already := false
			for _, r := range present {
				if r == k {
					already = true
					break
				}
			}
			if !already {
				present = append(present, k)
			}
		}

		// Stage 1: symbolic reach.
		top := size
		for _, r := range present {
			if flag[r] == k {
				continue
			}
			top = dfsReach(r, k, localPinv, Lip, Llen, lu, lpend, flag, stack, top)
		}

		// Stage 3: numeric solve against already-pivotal rows, collecting
		// U(k) entries as we go.
		uStart := len(lu)
		for t := top; t < size; t++ {
			j := stack[t]
			pcol := localPinv[j]
			if pcol == -1 {
				continue
			}
			xj := x[j]
			x[j] = 0
			if xj != 0 {
				lu = append(lu, luEntry{row: pcol, val: xj})
				start := Lip[pcol]
				for idx := start; idx < start+Llen[pcol]; idx++ {
					e := lu[idx]
					x[e.row] -= e.val * xj
				}
			}
		}
		Uip[k] = uStart
		Ulen[k] = len(lu) - uStart

		// Stage 4: partial pivoting with diagonal preference.
		var candidates []int
		for t := top; t < size; t++ {
			j := stack[t]
			if localPinv[j] == -1 {
				candidates = append(candidates, j)
			}
		}

		diagAbs := math.Abs(x[k])
		bestRow, bestAbs := -1, -1.0
		for _, r := range candidates {
			if r == k {
				continue
			}
			av := math.Abs(x[r])
			if av > bestAbs {
				bestAbs = av
				bestRow = r
			}
		}

		pivRow := k
		tol := cfg.PivotTol
		if tol == 0 {
			tol = DefaultPivotTol
		}
		if bestRow != -1 && diagAbs < tol*bestAbs {
			pivRow = bestRow
		}
		pivVal := x[pivRow]

		if pivVal == 0 {
			if cfg.HaltIfSingular {
				return fmt.Errorf("column %d: %w", lo+k, ErrSingular)
			}
			if num.NumericalRank == num.sym.N {
				num.NumericalRank = lo + k
			}
			found := false
			for _, r := range candidates {
				if localPinv[r] == -1 {
					pivRow = r
					pivVal = x[r]
					found = true
					break
				}
			}
			if !found {
				pivRow = k
				pivVal = x[k]
			}
		}

		localPinv[pivRow] = k
		num.Udiag[lo+k] = pivVal

		// Stage 5: commit L column (everything left in X, excluding the
		// pivot, divided by the pivot value).
		lStart := len(lu)
		for _, r := range candidates {
			if r == pivRow {
				continue
			}
			v := x[r]
			x[r] = 0
			if v != 0 {
				lu = append(lu, luEntry{row: r, val: v / pivVal})
			}
		}
		x[pivRow] = 0
		Lip[k] = lStart
		Llen[k] = len(lu) - lStart

		// Stage 6: symmetric pruning — for each U(j,k) with j<k, if L(:,j)
		// contains pivrow(k), partition L(:,j) so pivotal rows lead.
		for idx := Uip[k]; idx < Uip[k]+Ulen[k]; idx++ {
			j := lu[idx].row
			pruneColumn(lu, Lip, Llen, lpend, j, pivRow, localPinv)
		}
	}

	// Rewrite L row indices through localPinv into pivotal order.
	for k := 0; k < size; k++ {
		for idx := Lip[k]; idx < Lip[k]+Llen[k]; idx++ {
			lu[idx].row = localPinv[lu[idx].row]
		}
	}

	num.lu[b] = lu
	num.Lip[b] = Lip
	num.Uip[b] = Uip
	num.Llen[b] = Llen
	num.Ulen[b] = Ulen

	localInv := make([]int, size)
	for r, p := range localPinv {
		if p != -1 {
			localInv[p] = r
		}
	}
	for k := 0; k < size; k++ {
		num.Pnum[lo+k] = sym.P[lo+localInv[k]]
	}
	for k := 0; k < size; k++ {
		num.Pinv[num.Pnum[lo+k]] = lo + k
	}

	return nil
}

// dfsReach is the symbolic step of left-looking LU (spec §4.C.2 step 1):
// an iterative DFS over the transposed pattern of L's already-committed
// columns. A pivotal row recurses into its L column (restricted to
// lpend[pcol] when pruning has narrowed the live prefix); a non-pivotal row
// is a leaf and is pushed onto the topological stack.
func dfsReach(start, k int, localPinv, Lip, Llen []int, lu []luEntry, lpend, flag, stack []int, top int) int {
	type frame struct{ row, pos int }
	frames := []frame{{row: start, pos: 0}}
	flag[start] = k

	for len(frames) > 0 {
		d := len(frames) - 1
		row := frames[d].row
		pcol := localPinv[row]
		if pcol == -1 {
			frames = frames[:d]
			top--
			stack[top] = row
			continue
		}

		limit := Llen[pcol]
		if lpend[pcol] >= 0 {
			limit = lpend[pcol]
		}
		base := Lip[pcol]

		advanced := false
		for frames[d].pos < limit {
			idx := base + frames[d].pos
			frames[d].pos++
			r := lu[idx].row
			if flag[r] == k {
				continue
			}
			flag[r] = k
			frames = append(frames, frame{row: r, pos: 0})
			advanced = true
			break
		}
		if advanced {
			continue
		}

		frames = frames[:d]
		top--
		stack[top] = row
	}

	return top
}

// pruneColumn implements symmetric pruning (spec §4.C.2 step 6): if L(:,j)
// contains pivRow, partition its entries so pivotal rows (w.r.t. the
// current localPinv) come first, and record lpend[j] as that prefix's
// length so future DFS scans of column j stop there.
func pruneColumn(lu []luEntry, Lip, Llen, lpend []int, j, pivRow int, localPinv []int) {
	if lpend[j] >= 0 {
		return // already pruned this factorization pass
	}
	base := Lip[j]
	limit := Llen[j]
	found := false
	for idx := base; idx < base+limit; idx++ {
		if lu[idx].row == pivRow {
			found = true
			break
		}
	}
	if !found {
		return
	}

	w := base
	for idx := base; idx < base+limit; idx++ {
		if localPinv[lu[idx].row] != -1 {
			lu[w], lu[idx] = lu[idx], lu[w]
			w++
		}
	}
	lpend[j] = w - base
}
