package analysis

import (
	"fmt"
	"math"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
)

// Transient advances the circuit over the uniform time grid t_m = m*TStep,
// m = 0..floor(TStop/TStep) (spec §4.E.3). t_0's sample is the DC operating
// point; every later sample is a Newton solve with capacitors linearized
// into their companion model from the prior step's state.
func Transient(deck *mna.Deck, tran mna.TranCommand, integrator Integrator, cfg NewtonConfig) (*mna.TransientResult, error) {
	if tran.UIC {
		return nil, fmt.Errorf("Transient: %w", ErrUICNotSupported)
	}

	c, err := newCircuit(deck)
	if err != nil {
		return nil, fmt.Errorf("Transient: %w", err)
	}
	caps := c.capacitors()

	x0, err := c.newton(nil, devices.StampContext{}, cfg)
	if err != nil {
		return nil, fmt.Errorf("Transient: initial operating point: %w", err)
	}

	nSteps := int(math.Floor(tran.TStop/tran.TStep + 1e-9))
	times := make([]float64, nSteps+1)
	samples := make([][]float64, nSteps+1)
	samples[0] = x0

	history := make(map[string]devices.CompanionState, len(caps))
	for _, cap := range caps {
		history[cap.Name()] = devices.CompanionState{VPrev: cap.Voltage(x0)}
	}

	xPrev := x0
	for m := 1; m <= nSteps; m++ {
		t := float64(m) * tran.TStep
		ctx := devices.StampContext{
			Transient:  true,
			Step:       tran.TStep,
			Integrator: integrator,
			History:    history,
		}

		xNow, err := c.newton(xPrev, ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("Transient: step %d (t=%g): %w", m, t, err)
		}

		history = nextCompanionHistory(caps, history, xNow, integrator, tran.TStep)
		times[m] = t
		samples[m] = xNow
		xPrev = xNow
	}

	return &mna.TransientResult{
		Times:       times,
		NodeNames:   c.nodeNames(),
		SourceNames: c.branchNames(),
		Samples:     samples,
	}, nil
}

// nextCompanionHistory records each capacitor's converged voltage/current
// for the following time step (spec §4.E.3 step c: I_cap = g*(V_now -
// V_prev) - I_prev_recorded).
func nextCompanionHistory(caps []*devices.Capacitor, prior map[string]devices.CompanionState, x []float64, integrator Integrator, step float64) map[string]devices.CompanionState {
	next := make(map[string]devices.CompanionState, len(caps))
	for _, cap := range caps {
		h := prior[cap.Name()]
		g := cap.Conductance(integrator, step)
		vNow := cap.Voltage(x)
		iNow := cap.Current(g, vNow, h.VPrev, h.IPrev)
		next[cap.Name()] = devices.CompanionState{VPrev: vNow, IPrev: iNow}
	}

	return next
}
