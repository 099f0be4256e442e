// Package devices provides the MNA stamping layer: every circuit element
// resolves its incidence pattern once during pattern build (RegisterPattern)
// into a StampHandle of pre-resolved nnz slots, then writes values straight
// into those slots on every factor/refactor cycle (Stamp) — no runtime
// searching on the hot path.
package devices

import "errors"

// Sentinel errors for the devices package.
var (
	// ErrBadTerminal indicates a device was constructed with a
	// non-positive parameter (resistance, capacitance, diode Is/N, or BJT
	// Is/betaF/betaR).
	ErrBadTerminal = errors.New("devices: invalid terminal")

	// ErrNoIterate indicates a nonlinear device's Stamp was called before
	// a StampContext carrying the current Newton iterate was supplied.
	ErrNoIterate = errors.New("devices: missing Newton iterate")
)
