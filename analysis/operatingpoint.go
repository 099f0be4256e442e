package analysis

import (
	"fmt"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
)

// OperatingPoint computes a single DC operating point (spec §4.E.1): Newton
// from a zero initial guess, with every capacitor open (StampContext's zero
// value has Transient=false).
func OperatingPoint(deck *mna.Deck, cfg NewtonConfig) (*mna.OperatingPointResult, error) {
	c, err := newCircuit(deck)
	if err != nil {
		return nil, fmt.Errorf("OperatingPoint: %w", err)
	}

	x, err := c.newton(nil, devices.StampContext{}, cfg)
	if err != nil {
		return nil, fmt.Errorf("OperatingPoint: %w", err)
	}

	res := c.extractResult(x)

	return &res, nil
}
