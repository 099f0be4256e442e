// Package mtxio implements the MatrixMarket coordinate-format loader and the
// binary permutation/solve dump format used for parity testing against a
// reference implementation (spec §6).
package mtxio

import "errors"

// Sentinel errors for the mtxio package.
var (
	// ErrBadBanner indicates the first line isn't a recognized MatrixMarket
	// banner.
	ErrBadBanner = errors.New("mtxio: bad MatrixMarket banner")

	// ErrUnsupportedType indicates an object/format/field/symmetry
	// combination this loader does not support (only coordinate, general,
	// real|integer is implemented per spec §6).
	ErrUnsupportedType = errors.New("mtxio: unsupported MatrixMarket type")

	// ErrBadSizeLine indicates the dimension line is missing or malformed.
	ErrBadSizeLine = errors.New("mtxio: bad size line")

	// ErrBadEntry indicates a coordinate entry line failed to parse.
	ErrBadEntry = errors.New("mtxio: bad entry line")

	// ErrIO wraps an underlying I/O error encountered while reading.
	ErrIO = errors.New("mtxio: io error")

	// ErrBadMagic indicates a binary dump's magic bytes did not match the
	// expected "SPKLPERM" or "SPKLSOLV" tag.
	ErrBadMagic = errors.New("mtxio: bad dump magic")

	// ErrBadVersion indicates a binary dump's version field is not the one
	// this reader understands (version 1).
	ErrBadVersion = errors.New("mtxio: unsupported dump version")

	// ErrBadStage indicates a permutation dump's stage field is neither 1
	// (analyze+factor) nor 2 (solve).
	ErrBadStage = errors.New("mtxio: bad dump stage")
)
