package analysis

import (
	"testing"

	"github.com/nodalspice/spicekit/devices"
	"github.com/nodalspice/spicekit/mna"
	"github.com/stretchr/testify/require"
)

func TestNewtonConverged_WithinBound(t *testing.T) {
	t.Parallel()

	prev := []float64{1.0, 2.0}
	next := []float64{1.0 + 1e-13, 2.0 + 1e-13}
	require.True(t, newtonConverged(prev, next, 1e-12, 1e-3))
}

func TestNewtonConverged_ExceedsBound(t *testing.T) {
	t.Parallel()

	prev := []float64{1.0}
	next := []float64{1.1}
	require.False(t, newtonConverged(prev, next, 1e-12, 1e-3))
}

func TestNextSweepValue_AscendingInclusiveOfV1(t *testing.T) {
	t.Parallel()

	sweep := mna.DcCommand{V0: 0, V1: 3, Step: 1}
	v, more := nextSweepValue(0, sweep)
	require.Equal(t, 1.0, v)
	require.True(t, more)

	v, more = nextSweepValue(3, sweep)
	require.Equal(t, 4.0, v)
	require.False(t, more)
}

func TestNextSweepValue_Descending(t *testing.T) {
	t.Parallel()

	sweep := mna.DcCommand{V0: 5, V1: 0, Step: -1}
	v, more := nextSweepValue(5, sweep)
	require.Equal(t, 4.0, v)
	require.True(t, more)

	v, more = nextSweepValue(0, sweep)
	require.Equal(t, -1.0, v)
	require.False(t, more)
}

func TestDeviceRank_CanonicalStampingOrder(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"a", "b"}, []string{"V1"})
	r, err := devices.NewResistor(mapping, "R1", 1, 2, 1000)
	require.NoError(t, err)
	c, err := devices.NewCapacitor(mapping, "C1", 1, 2, 1e-6)
	require.NoError(t, err)
	v := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 5)
	i := devices.NewCurrentSource(mapping, "I1", 1, 2, 1e-3)
	d, err := devices.NewDiode(mapping, "D1", 1, 2, 1e-14, 1)
	require.NoError(t, err)
	q, err := devices.NewBJT(mapping, "Q1", 1, 2, mna.Ground, 1e-16, 100, 1, devices.NPN)
	require.NoError(t, err)
	l := devices.NewInductor(mapping, "L1", 1, 2, 0, 1e-3)

	require.True(t, deviceRank(r) < deviceRank(l))
	require.True(t, deviceRank(l) < deviceRank(c))
	require.True(t, deviceRank(c) < deviceRank(v))
	require.True(t, deviceRank(v) < deviceRank(i))
	require.True(t, deviceRank(i) < deviceRank(d))
	require.True(t, deviceRank(d) < deviceRank(q))
}

func TestNewCircuit_StampsInCanonicalOrderRegardlessOfDeckOrder(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"in", "mid"}, []string{"V1"})
	v := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 10.0)
	r2, err := devices.NewResistor(mapping, "R2", 2, mna.Ground, 1000)
	require.NoError(t, err)
	r1, err := devices.NewResistor(mapping, "R1", 1, 2, 1000)
	require.NoError(t, err)

	deck := &mna.Deck{
		Devices: []mna.Device{v, r2, r1}, // deliberately out of canonical order
		Mapping: mapping,
	}
	c, err := newCircuit(deck)
	require.NoError(t, err)
	require.Len(t, c.devs, 3)
	for i := 1; i < len(c.devs); i++ {
		require.LessOrEqual(t, deviceRank(c.devs[i-1]), deviceRank(c.devs[i]))
	}
}

func TestCircuit_StampAllIsIdempotentAcrossRepeatedCycles(t *testing.T) {
	t.Parallel()

	mapping := mna.NewNodeMapping([]string{"in", "mid"}, []string{"V1"})
	v := devices.NewVoltageSource(mapping, "V1", 1, mna.Ground, 0, 10.0)
	r1, err := devices.NewResistor(mapping, "R1", 1, 2, 1000)
	require.NoError(t, err)
	r2, err := devices.NewResistor(mapping, "R2", 2, mna.Ground, 1000)
	require.NoError(t, err)

	deck := &mna.Deck{Devices: []mna.Device{v, r1, r2}, Mapping: mapping}
	c, err := newCircuit(deck)
	require.NoError(t, err)

	rhs1 := make([]float64, c.n)
	require.NoError(t, c.stampAll(rhs1, &devices.StampContext{}))
	first := append([]float64(nil), c.a.Values...)

	rhs2 := make([]float64, c.n)
	require.NoError(t, c.stampAll(rhs2, &devices.StampContext{}))

	require.Equal(t, first, c.a.Values)
	require.Equal(t, rhs1, rhs2)
}
