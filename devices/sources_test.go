package devices_test

import (
	"testing"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
	"github.com/stretchr/testify/require"
)

func TestVoltageSource_StampsIncidenceAndRHS(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"in"}, []string{"V1"})
	v := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 5.0)

	a := assembled(t, mapping.MNAMatrixDim(), v)
	rhs := make([]float64, mapping.MNAMatrixDim())
	require.NoError(t, v.Stamp(a, rhs, nil))

	dense := toDense(a)
	// branch row/col is index 1 (after the single node unknown).
	require.InDelta(t, 1.0, dense[0][1], 1e-12)
	require.InDelta(t, 1.0, dense[1][0], 1e-12)
	require.InDelta(t, 5.0, rhs[1], 1e-12)
}

func TestVoltageSource_SetVoltagePatchesValueInPlace(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"in"}, []string{"V1"})
	v := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 5.0)
	v.SetVoltage(9.0)
	require.Equal(t, 9.0, v.Voltage())
}

func TestCurrentSource_StampsRHSOnly(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"a", "b"}, nil)
	i := devices.NewCurrentSource(mapping, "I1", 1, 2, 0.002)

	a := assembled(t, mapping.MNAMatrixDim(), i)
	require.Equal(t, 0, a.Nnz())

	rhs := make([]float64, mapping.MNAMatrixDim())
	require.NoError(t, i.Stamp(a, rhs, nil))
	require.InDelta(t, 0.002, rhs[0], 1e-12)
	require.InDelta(t, -0.002, rhs[1], 1e-12)
}

func TestInductor_StampsIncidenceWithZeroRHS(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"a"}, []string{"L1"})
	l := devices.NewInductor(mapping, "L1", 1, mna.Ground, 0, 1e-3)

	a := assembled(t, mapping.MNAMatrixDim(), l)
	rhs := make([]float64, mapping.MNAMatrixDim())
	require.NoError(t, l.Stamp(a, rhs, nil))

	dense := toDense(a)
	require.InDelta(t, 1.0, dense[0][1], 1e-12)
	require.InDelta(t, 1.0, dense[1][0], 1e-12)
	require.InDelta(t, 0.0, rhs[1], 1e-12)
}
