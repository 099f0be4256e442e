// Package analysis implements the circuit-level drivers on top of mna and
// klu: operating-point Newton iteration, DC sweep continuation, and
// transient companion-model integration. It owns the one piece of state the
// devices package deliberately does not: per-capacitor history between time
// steps (spec §9, "companion-model coupling").
package analysis

import (
	"errors"

	"github.com/nodalspice/spicekit/devices"
)

// Re-exported so callers configuring a transient run don't need to import
// devices directly just to name an integrator.
type Integrator = devices.Integrator

const (
	BackwardEuler = devices.BackwardEuler
	Trapezoidal   = devices.Trapezoidal
)

// Sentinel errors for the analysis package.
var (
	// ErrNotConverged indicates Newton exceeded MaxIters without satisfying
	// the convergence test.
	ErrNotConverged = errors.New("analysis: newton did not converge")

	// ErrUICNotSupported indicates TranCommand.UIC was requested; "use
	// initial conditions" from device IC values is unimplemented (spec §9
	// open question: the source material leaves IC semantics ambiguous for
	// devices that carry no IC field at all).
	ErrUICNotSupported = errors.New("analysis: UIC is not supported")

	// ErrUnsupportedDevice indicates a mna.Device in the deck does not also
	// satisfy devices.Device, i.e. it cannot be stamped by this engine.
	ErrUnsupportedDevice = errors.New("analysis: device does not implement the stamping interface")

	// ErrUnknownSource indicates a DC sweep named a source designator
	// absent from the deck, or one that isn't a V/I source.
	ErrUnknownSource = errors.New("analysis: unknown source designator")

	// ErrBadStep indicates a DcCommand.Step of zero, which can never reach
	// V1.
	ErrBadStep = errors.New("analysis: dc sweep step must be nonzero")
)
