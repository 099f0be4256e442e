// Package klu implements the numerical engine: symbolic analysis of a
// block-triangular-formed sparse matrix, left-looking LU factorization with
// partial pivoting and symmetric pruning per diagonal block, a fast
// structure-reusing refactor path, and a block-aware multi-RHS solve.
package klu

import "errors"

// Sentinel errors for the klu package.
var (
	// ErrNotSquare indicates Analyze/Factor was given a non-square matrix.
	ErrNotSquare = errors.New("klu: matrix is not square")

	// ErrDimensionMismatch indicates a Symbolic/Numeric pair, or a Numeric
	// and a solve RHS, disagree on dimension.
	ErrDimensionMismatch = errors.New("klu: dimension mismatch")

	// ErrSingular indicates a zero pivot was encountered and cfg.HaltIfSingular
	// was set.
	ErrSingular = errors.New("klu: numerically singular")

	// ErrStructureChanged indicates Refactor was called with a matrix whose
	// nonzero pattern does not match the Symbolic it was analyzed against.
	ErrStructureChanged = errors.New("klu: pattern changed since analyze")

	// ErrBadNRHS indicates Solve was given nrhs <= 0 or a RHS buffer whose
	// length does not match d*nrhs.
	ErrBadNRHS = errors.New("klu: invalid NRHS or RHS buffer length")

	// ErrBadScale indicates a non-positive row-scale factor was produced;
	// scaling requires every row to carry at least one nonzero.
	ErrBadScale = errors.New("klu: non-positive row scale")
)
