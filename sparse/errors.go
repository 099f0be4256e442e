// Package sparse implements the compressed-sparse-column matrix container
// used throughout the solver, plus the triplet-to-CSC pattern builder that
// gives device stamps stable O(1) nonzero slots.
//
// Invariants (checked by CheckInvariants, enforced by construction
// elsewhere): ColPtr is monotone non-decreasing with ColPtr[0]=0 and
// ColPtr[N]=nnz; within each column RowIdx is strictly increasing and in
// [0,N); Values is parallel to RowIdx. Explicit zeros are permitted and are
// used as pattern placeholders by MatrixBuilder.
package sparse

import "errors"

// Sentinel errors for the sparse package. Every message is prefixed
// "sparse: ..." so they are easy to grep across logs; wrap with fmt.Errorf
// at the call boundary if extra context is needed, callers still match via
// errors.Is.
var (
	// ErrBadShape is returned when nrows or ncols is non-positive.
	ErrBadShape = errors.New("sparse: invalid shape")

	// ErrOutOfRange indicates a row or column index outside [0, dim).
	ErrOutOfRange = errors.New("sparse: index out of range")

	// ErrBadColPtr indicates ColPtr fails monotonicity, length, or endpoint
	// invariants.
	ErrBadColPtr = errors.New("sparse: invalid column pointer array")

	// ErrUnsortedColumn indicates a column's RowIdx slice is not strictly
	// increasing (duplicate or out-of-order row).
	ErrUnsortedColumn = errors.New("sparse: column rows not strictly increasing")

	// ErrDimensionMismatch indicates incompatible shapes between operands.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")

	// ErrNotBuilt indicates BuildCSC/BuildCSCPattern was never called on a
	// builder before a query requiring the compacted result.
	ErrNotBuilt = errors.New("sparse: pattern not built")

	// ErrTooLarge indicates a workspace-sizing computation would overflow,
	// or an allocation would exceed a configured ceiling.
	ErrTooLarge = errors.New("sparse: requested allocation too large")
)
