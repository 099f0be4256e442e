package devices_test

import (
	"math"
	"testing"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
	"github.com/stretchr/testify/require"
)

func TestDiode_LinearizationMatchesShockleyAtGivenBias(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"anode", "cathode"}, nil)
	d, err := devices.NewDiode(mapping, "D1", 1, 2, 1e-14, 1.0)
	require.NoError(t, err)

	a := assembled(t, mapping.MNAMatrixDim(), d)
	rhs := make([]float64, mapping.MNAMatrixDim())
	ctx := &devices.StampContext{X: []float64{0.6, 0.0}}
	require.NoError(t, d.Stamp(a, rhs, ctx))

	nvt := 1.0 * devices.ThermalVoltage
	wantEv := math.Exp(0.6 / nvt)
	wantG := 1e-14 * wantEv / nvt
	wantI := 1e-14 * (wantEv - 1)
	wantIEq := wantI - wantG*0.6

	dense := toDense(a)
	require.InDelta(t, wantG, dense[0][0], wantG*1e-9)
	require.InDelta(t, -wantIEq, rhs[0], math.Abs(wantIEq)*1e-9+1e-15)
	require.InDelta(t, wantIEq, rhs[1], math.Abs(wantIEq)*1e-9+1e-15)
}

func TestDiode_ClampsExtremeForwardBiasToExpLimit(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"anode", "cathode"}, nil)
	d, err := devices.NewDiode(mapping, "D1", 1, 2, 1e-14, 1.0)
	require.NoError(t, err)

	a := assembled(t, mapping.MNAMatrixDim(), d)
	rhs := make([]float64, mapping.MNAMatrixDim())
	// A wild Newton guess far beyond the exp_limit clamp must not overflow
	// or produce a non-finite stamp.
	ctx := &devices.StampContext{X: []float64{1e6, 0.0}}
	require.NoError(t, d.Stamp(a, rhs, ctx))

	dense := toDense(a)
	require.True(t, !math.IsInf(dense[0][0], 0) && !math.IsNaN(dense[0][0]))
	require.True(t, !math.IsInf(rhs[0], 0) && !math.IsNaN(rhs[0]))
}

func TestNewDiode_RejectsNonPositiveParams(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"a", "b"}, nil)
	_, err := devices.NewDiode(mapping, "D1", 1, 2, 0, 1.0)
	require.ErrorIs(t, err, devices.ErrBadTerminal)
}
