package sparse

import (
	"fmt"
	"math"
)

// CSC is a compressed-sparse-column matrix: ColPtr[0..N] is monotone with
// ColPtr[0]=0 and ColPtr[N]=nnz; RowIdx[ColPtr[j]:ColPtr[j+1]] holds the
// strictly increasing row indices of column j; Values is parallel to
// RowIdx. N = Rows = Cols (the solver only ever factors square matrices).
type CSC struct {
	N      int
	ColPtr []int
	RowIdx []int
	Values []float64
}

// NewCSC allocates an empty n x n CSC with nnz preallocated capacity for
// RowIdx/Values (the slices themselves start at length 0; callers fill them
// via a MatrixBuilder, not by hand).
func NewCSC(n, nnzHint int) (*CSC, error) {
	if n <= 0 {
		return nil, fmt.Errorf("NewCSC: n=%d: %w", n, ErrBadShape)
	}
	if nnzHint < 0 {
		nnzHint = 0
	}

	return &CSC{
		N:      n,
		ColPtr: make([]int, n+1),
		RowIdx: make([]int, 0, nnzHint),
		Values: make([]float64, 0, nnzHint),
	}, nil
}

// Nnz returns the number of stored entries.
func (a *CSC) Nnz() int { return len(a.RowIdx) }

// CheckInvariants verifies the CSC structural invariants from spec §8:
// ColPtr length/monotonicity/endpoints, RowIdx bounds, and per-column
// strictly increasing rows. Intended to run under debug assertions, not on
// every hot-path call.
// Complexity: O(nnz + N).
func (a *CSC) CheckInvariants() error {
	if len(a.ColPtr) != a.N+1 {
		return fmt.Errorf("CheckInvariants: len(ColPtr)=%d want %d: %w", len(a.ColPtr), a.N+1, ErrBadColPtr)
	}
	if a.ColPtr[0] != 0 {
		return fmt.Errorf("CheckInvariants: ColPtr[0]=%d want 0: %w", a.ColPtr[0], ErrBadColPtr)
	}
	if a.ColPtr[a.N] != len(a.RowIdx) {
		return fmt.Errorf("CheckInvariants: ColPtr[N]=%d want nnz=%d: %w", a.ColPtr[a.N], len(a.RowIdx), ErrBadColPtr)
	}
	if len(a.RowIdx) != len(a.Values) {
		return fmt.Errorf("CheckInvariants: len(RowIdx)=%d != len(Values)=%d: %w", len(a.RowIdx), len(a.Values), ErrDimensionMismatch)
	}

	for j := 0; j < a.N; j++ {
		if a.ColPtr[j] > a.ColPtr[j+1] {
			return fmt.Errorf("CheckInvariants: ColPtr[%d]=%d > ColPtr[%d]=%d: %w", j, a.ColPtr[j], j+1, a.ColPtr[j+1], ErrBadColPtr)
		}
		prev := -1
		for p := a.ColPtr[j]; p < a.ColPtr[j+1]; p++ {
			row := a.RowIdx[p]
			if row < 0 || row >= a.N {
				return fmt.Errorf("CheckInvariants: col %d row %d out of [0,%d): %w", j, row, a.N, ErrOutOfRange)
			}
			if row <= prev {
				return fmt.Errorf("CheckInvariants: col %d rows not strictly increasing at pos %d: %w", j, p, ErrUnsortedColumn)
			}
			prev = row
		}
	}

	return nil
}

// Col returns the row indices and values of column j as sub-slices (no
// copy). Mutating the returned Values slice mutates a.
// Complexity: O(1).
func (a *CSC) Col(j int) (rows []int, vals []float64) {
	lo, hi := a.ColPtr[j], a.ColPtr[j+1]

	return a.RowIdx[lo:hi], a.Values[lo:hi]
}

// GetMutNnz returns a pointer to the value at nonzero slot `slot`, the only
// hot-path accessor device stamping is permitted to use. slot indices come
// from a prior MatrixBuilder.BuildCSCPattern call via its EntryMap; there is
// no searching involved.
func (a *CSC) GetMutNnz(slot int) *float64 {
	return &a.Values[slot]
}

// ZeroValues resets every stored value to 0 while leaving the pattern
// (ColPtr/RowIdx) untouched. Used at the start of every stamp cycle.
// Complexity: O(nnz).
func (a *CSC) ZeroValues() {
	for i := range a.Values {
		a.Values[i] = 0
	}
}

// AxpyInto adds alpha * A[:,j] into the dense accumulator y (y += alpha *
// col j). len(y) must be >= N.
// Complexity: O(nnz in column j).
func (a *CSC) AxpyInto(j int, alpha float64, y []float64) {
	rows, vals := a.Col(j)
	axpyInto(rows, vals, alpha, y)
}

// OneNorm returns the matrix 1-norm: max over columns of the sum of
// absolute values in that column.
// Complexity: O(nnz).
func (a *CSC) OneNorm() float64 {
	var maxSum float64
	for j := 0; j < a.N; j++ {
		_, vals := a.Col(j)
		var sum float64
		for _, v := range vals {
			sum += math.Abs(v)
		}
		if sum > maxSum {
			maxSum = sum
		}
	}

	return maxSum
}

// Transpose returns the CSC of A^T, computed via the classic O(nnz+N)
// counting-sort transpose (equivalently, A's CSC read as CSR).
func (a *CSC) Transpose() (*CSC, error) {
	t, err := NewCSC(a.N, a.Nnz())
	if err != nil {
		return nil, fmt.Errorf("Transpose: %w", err)
	}
	t.RowIdx = t.RowIdx[:a.Nnz()]
	t.Values = t.Values[:a.Nnz()]

	// Stage 1: count entries per row of A == per column of A^T.
	counts := make([]int, a.N)
	for _, row := range a.RowIdx {
		counts[row]++
	}
	t.ColPtr[0] = 0
	for i := 0; i < a.N; i++ {
		t.ColPtr[i+1] = t.ColPtr[i] + counts[i]
	}

	// Stage 2: scatter, using a scratch cursor per row.
	cursor := append([]int(nil), t.ColPtr[:a.N]...)
	for j := 0; j < a.N; j++ {
		rows, vals := a.Col(j)
		for p, row := range rows {
			dst := cursor[row]
			t.RowIdx[dst] = j
			t.Values[dst] = vals[p]
			cursor[row]++
		}
	}

	return t, nil
}

// Permute returns A[:, q] — a column permutation of A. q must be a
// permutation of [0, N).
// Complexity: O(nnz + N).
func (a *CSC) Permute(q []int) (*CSC, error) {
	if len(q) != a.N {
		return nil, fmt.Errorf("Permute: len(q)=%d want %d: %w", len(q), a.N, ErrDimensionMismatch)
	}

	out, err := NewCSC(a.N, a.Nnz())
	if err != nil {
		return nil, fmt.Errorf("Permute: %w", err)
	}
	out.RowIdx = out.RowIdx[:a.Nnz()]
	out.Values = out.Values[:a.Nnz()]

	pos := 0
	for j := 0; j < a.N; j++ {
		rows, vals := a.Col(q[j])
		copy(out.RowIdx[pos:], rows)
		copy(out.Values[pos:], vals)
		pos += len(rows)
		out.ColPtr[j+1] = pos
	}

	return out, nil
}
