package klu

import (
	"fmt"

	"github.com/nodalspice/spicekit/sparse"
)

// Refactor recomputes numeric values against a frozen pivot order and LU
// pattern from a prior factorization (spec §4.C.4): no DFS, no pivoting, no
// pruning. This is the fast path DC sweeps and Newton inner iterations use
// once the first factorization has fixed the structure.
func Refactor(a *sparse.CSC, sym *Symbolic, prior *Numeric, cfg Config) (*Numeric, error) {
	if a.N != sym.N {
		return nil, fmt.Errorf("Refactor: %w", ErrDimensionMismatch)
	}
	if prior == nil || prior.sym.N != sym.N || len(prior.lu) != sym.NBlocks {
		return nil, fmt.Errorf("Refactor: %w", ErrStructureChanged)
	}

	num := &Numeric{
		sym:           sym,
		lu:            make([][]luEntry, sym.NBlocks),
		Lip:           prior.Lip,
		Uip:           prior.Uip,
		Llen:          prior.Llen,
		Ulen:          prior.Ulen,
		Udiag:         make([]float64, sym.N),
		Pnum:          prior.Pnum,
		Pinv:          prior.Pinv,
		NumericalRank: sym.N,
		x:             make([]float64, sym.MaxBlock),
	}

	if cfg.Scale != ScaleNone {
		num.Rs = computeRowScale(a, cfg.Scale)
	}

	for b := 0; b < sym.NBlocks; b++ {
		if err := num.refactorBlock(a, sym, prior, b, cfg); err != nil {
			return nil, fmt.Errorf("Refactor: block %d: %w", b, err)
		}
	}

	num.buildOffDiagonal(a, sym)

	if num.Rs != nil {
		num.Rs = permuteScaleToPivotal(num.Rs, num.Pnum)
	}

	return num, nil
}

func (num *Numeric) refactorBlock(a *sparse.CSC, sym *Symbolic, prior *Numeric, b int, cfg Config) error {
	lo, hi := sym.R[b], sym.R[b+1]
	size := hi - lo
	if size == 0 {
		return nil
	}

	x := num.x[:size]
	for i := range x {
		x[i] = 0
	}

	lu := make([]luEntry, len(prior.lu[b]))
	copy(lu, prior.lu[b])
	Lip, Uip, Llen, Ulen := prior.Lip[b], prior.Uip[b], prior.Llen[b], prior.Ulen[b]

	for k := 0; k < size; k++ {
		origCol := sym.Q[lo+k]
		rows, vals := a.Col(origCol)
		for idx, origRow := range rows {
			pos := prior.Pinv[origRow] - lo
			if pos < 0 || pos >= size {
				continue // off-block entry, handled by buildOffDiagonal
			}
			v := vals[idx]
			if num.Rs != nil {
				v /= num.Rs[origRow]
			}
			x[pos] += v
		}

		for idx := Uip[k]; idx < Uip[k]+Ulen[k]; idx++ {
			pcol := lu[idx].row
			xj := x[pcol]
			x[pcol] = 0
			lu[idx].val = xj

			start := Lip[pcol]
			for li := start; li < start+Llen[pcol]; li++ {
				r := lu[li].row
				x[r] -= lu[li].val * xj
			}
		}

		pivVal := x[k]
		if pivVal == 0 {
			if cfg.HaltIfSingular {
				return fmt.Errorf("column %d: %w", lo+k, ErrSingular)
			}
			if num.NumericalRank == num.sym.N {
				num.NumericalRank = lo + k
			}
			pivVal = 1 // degenerate pivot: divide by 1 rather than zero, leaving the L column unscaled
		}
		num.Udiag[lo+k] = pivVal
		x[k] = 0

		for idx := Lip[k]; idx < Lip[k]+Llen[k]; idx++ {
			r := lu[idx].row
			lu[idx].val = x[r] / pivVal
			x[r] = 0
		}
	}

	num.lu[b] = lu

	return nil
}
