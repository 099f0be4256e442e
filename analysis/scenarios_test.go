package analysis_test

import (
	"testing"

	"github.com/nodalspice/spicekit/analysis"
	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
	"github.com/stretchr/testify/require"
)

// TestOperatingPoint_ResistorDivider is spec §8 scenario 1.
func TestOperatingPoint_ResistorDivider(t *testing.T) {
	t.Parallel()

	deck := resistorDivider(t)
	res, err := analysis.OperatingPoint(deck, analysis.DefaultNewtonConfig())
	require.NoError(t, err)

	require.InDelta(t, 10.0, findVoltage(t, res, "in"), 1e-6)
	require.InDelta(t, 5.0, findVoltage(t, res, "mid"), 1e-6)
	require.InDelta(t, -0.005, findCurrent(t, res, "V1"), 1e-9)
}

// TestOperatingPoint_NortonSource is spec §8 scenario 2.
func TestOperatingPoint_NortonSource(t *testing.T) {
	t.Parallel()

	deck := nortonSource(t)
	res, err := analysis.OperatingPoint(deck, analysis.DefaultNewtonConfig())
	require.NoError(t, err)

	require.InDelta(t, 2.0, findVoltage(t, res, "a"), 1e-6)
}

// TestDCSweep_LinearDivider is spec §8 scenario 3.
func TestDCSweep_LinearDivider(t *testing.T) {
	t.Parallel()

	deck, _ := linearDivider(t)
	sweep := mna.DcCommand{Source: "V1", V0: 0, V1: 10, Step: 1}
	res, err := analysis.DCSweep(deck, sweep, analysis.DefaultNewtonConfig())
	require.NoError(t, err)
	require.Len(t, res.Results, 11)

	for _, pt := range res.Results {
		vb := findVoltage(t, &pt.Point, "b")
		require.InDelta(t, pt.SweepValue/2, vb, 1e-6)
	}
}

// TestDCSweep_RejectsZeroStep exercises the ErrBadStep guard.
func TestDCSweep_RejectsZeroStep(t *testing.T) {
	t.Parallel()

	deck, _ := linearDivider(t)
	_, err := analysis.DCSweep(deck, mna.DcCommand{Source: "V1", V0: 0, V1: 10, Step: 0}, analysis.DefaultNewtonConfig())
	require.ErrorIs(t, err, analysis.ErrBadStep)
}

// TestTransient_ConstantSourceHoldsAtOperatingPoint documents an
// architectural consequence of spec §4.D's fixed-value source model: with
// no time-varying sources, a transient's steady-state companion model can
// never differ from the DC operating point it starts from, since nothing in
// the circuit changes across time steps. PULSE/SIN waveform evaluation is
// the netlist collaborator's concern (spec §1), not this engine's.
func TestTransient_ConstantSourceHoldsAtOperatingPoint(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"in", "out"}, []string{"V1"})
	v1 := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 1.0)
	r1, err := devices.NewResistor(mapping, "R1", 1, 2, 1000)
	require.NoError(t, err)
	c1, err := devices.NewCapacitor(mapping, "C1", 2, mna.Ground, 1e-6)
	require.NoError(t, err)
	deck := &mna.Deck{Devices: []mna.Device{v1, r1, c1}, Mapping: mapping}

	tran := mna.TranCommand{TStep: 1e-5, TStop: 5e-3}
	res, err := analysis.Transient(deck, tran, analysis.BackwardEuler, analysis.DefaultNewtonConfig())
	require.NoError(t, err)
	require.Greater(t, len(res.Samples), 1)

	outIdx := 1 // node "out" is the second declared node
	v0 := res.Samples[0][outIdx]
	require.InDelta(t, 1.0, v0, 1e-6)
	for m := range res.Samples {
		require.InDelta(t, v0, res.Samples[m][outIdx], 1e-6)
	}
}

// TestOperatingPoint_DiodeHalfWave adapts spec §8 scenario 5: with no
// time-varying-source support, the SIN drive is exercised as independent
// operating points at representative points of one cycle.
func TestOperatingPoint_DiodeHalfWave(t *testing.T) {
	t.Parallel()

	deck, v1 := diodeHalfWave(t)
	for _, sample := range []float64{1.0, 0.5, 0.0, -0.5, -1.0} {
		v1.SetVoltage(sample)
		res, err := analysis.OperatingPoint(deck, analysis.DefaultNewtonConfig())
		require.NoError(t, err)
		require.GreaterOrEqualf(t, findVoltage(t, res, "b"), -1e-9, "sample V1=%g", sample)
	}
}

// TestOperatingPoint_BJTCommonEmitter is spec §8 scenario 6.
func TestOperatingPoint_BJTCommonEmitter(t *testing.T) {
	t.Parallel()

	deck := bjtCommonEmitter(t)
	res, err := analysis.OperatingPoint(deck, analysis.DefaultNewtonConfig())
	require.NoError(t, err)

	vcoll := findVoltage(t, res, "coll")
	ic := (5.0 - vcoll) / 1000 // current through RC, since RC has no branch unknown of its own

	require.GreaterOrEqual(t, ic, 0.003)
	require.LessOrEqual(t, ic, 0.005)
	require.GreaterOrEqual(t, vcoll, 0.5)
	require.LessOrEqual(t, vcoll, 2.0)
}
