// Package ordering implements the block-structure and fill-reducing
// ordering stage of the solver: maximum bipartite transversal (for a
// zero-free diagonal), block-triangular-form detection via Tarjan strongly
// connected components, and approximate minimum degree ordering within each
// diagonal block.
package ordering

import "errors"

// Sentinel errors for the ordering package.
var (
	// ErrNotSquare indicates an operation that requires a square matrix was
	// given a non-square one.
	ErrNotSquare = errors.New("ordering: matrix is not square")

	// ErrStructurallySingular indicates MaxTransversal could not find a
	// zero-free diagonal (matched_count < n).
	ErrStructurallySingular = errors.New("ordering: structurally singular")

	// ErrBadPermutation indicates a permutation array failed validation
	// (not a bijection on [0,n)).
	ErrBadPermutation = errors.New("ordering: invalid permutation")

	// ErrOverflow indicates a monotonic stamp counter is approaching
	// overflow and must be renormalized (surfaced only if renormalization
	// itself is impossible, which should never happen in practice).
	ErrOverflow = errors.New("ordering: stamp counter overflow")
)
