package klu

import "fmt"

// rhsChunk is the width Solve processes per inner pass: right-hand sides
// are handled in chunks of up to 4 by one generic loop over the chunk; the
// kernels are not unrolled per NRHS.
const rhsChunk = 4

// Solve overwrites a D×NRHS right-hand side B (row-major: B[i*nrhs+r] is
// row i of RHS vector r) in place with x = A⁻¹·b (spec §4.C.5):
//  1. scale and permute into pivotal order,
//  2. block back-substitution from the last block to the first, subtracting
//     each solved block's contribution to earlier blocks via Offp/Offi/Offx,
//  3. permute back into the caller's original row order.
func Solve(sym *Symbolic, num *Numeric, d, nrhs int, b []float64) error {
	if d != sym.N {
		return fmt.Errorf("Solve: %w", ErrDimensionMismatch)
	}
	if nrhs <= 0 || len(b) != d*nrhs {
		return fmt.Errorf("Solve: %w", ErrBadNRHS)
	}

	x := make([]float64, d*nrhs)
	for i := 0; i < d; i++ {
		origRow := num.Pnum[i]
		for r := 0; r < nrhs; r++ {
			v := b[origRow*nrhs+r]
			if num.Rs != nil {
				v /= num.Rs[i]
			}
			x[i*nrhs+r] = v
		}
	}

	for lo := 0; lo < nrhs; lo += rhsChunk {
		width := rhsChunk
		if lo+width > nrhs {
			width = nrhs - lo
		}
		solveChunk(sym, num, x, nrhs, lo, width)
	}

	for k := 0; k < d; k++ {
		origCol := sym.Q[k]
		for r := 0; r < nrhs; r++ {
			b[origCol*nrhs+r] = x[k*nrhs+r]
		}
	}

	return nil
}

// solveChunk performs the block back-substitution for RHS columns
// [lo, lo+width) of x, processing blocks from last to first.
func solveChunk(sym *Symbolic, num *Numeric, x []float64, nrhs, lo, width int) {
	for bIdx := sym.NBlocks - 1; bIdx >= 0; bIdx-- {
		blo, bhi := sym.R[bIdx], sym.R[bIdx+1]
		size := bhi - blo
		if size == 0 {
			continue
		}

		Lip, Llen := num.Lip[bIdx], num.Llen[bIdx]
		Uip, Ulen := num.Uip[bIdx], num.Ulen[bIdx]
		lu := num.lu[bIdx]

		// Forward solve: L*y = rhs (unit lower triangular w.r.t. the
		// block's local pivotal numbering 0..size-1).
		for k := 0; k < size; k++ {
			row := blo + k
			for idx := Lip[k]; idx < Lip[k]+Llen[k]; idx++ {
				target := blo + lu[idx].row
				val := lu[idx].val
				for c := 0; c < width; c++ {
					x[target*nrhs+lo+c] -= val * x[row*nrhs+lo+c]
				}
			}
		}

		// Back solve: U*x = y, walking pivot columns in reverse: resolve
		// x[k] by dividing by the diagonal, then propagate it into the
		// still-unresolved earlier rows referenced by column k's stored
		// (strictly upper) U entries.
		for k := size - 1; k >= 0; k-- {
			row := blo + k
			diag := num.Udiag[row]
			for c := 0; c < width; c++ {
				x[row*nrhs+lo+c] /= diag
			}
			for idx := Uip[k]; idx < Uip[k]+Ulen[k]; idx++ {
				target := blo + lu[idx].row
				val := lu[idx].val
				for c := 0; c < width; c++ {
					x[target*nrhs+lo+c] -= val * x[row*nrhs+lo+c]
				}
			}
		}

		// Subtract this block's contribution into earlier blocks via the
		// off-diagonal CSC (Offp/Offi/Offx indexed by global pivotal
		// column position).
		for k := blo; k < bhi; k++ {
			for idx := num.Offp[k]; idx < num.Offp[k+1]; idx++ {
				target := num.Offi[idx]
				val := num.Offx[idx]
				for c := 0; c < width; c++ {
					x[target*nrhs+lo+c] -= val * x[k*nrhs+lo+c]
				}
			}
		}
	}
}
