package mna_test

import (
	"testing"

	"github.com/nodalspice/spicekit/mna"
	"github.com/stretchr/testify/require"
)

func TestNodeMapping_GroundExcluded(t *testing.T) {
	t.Parallel()

	m := mna.NewNodeMapping([]string{"in", "mid"}, []string{"V1"})
	require.Equal(t, 2, m.NodeCount())
	require.Equal(t, 1, m.BranchCount())
	require.Equal(t, 3, m.MNAMatrixDim())

	_, ok := m.MNANodeIndex(mna.Ground)
	require.False(t, ok, "ground must not resolve to an MNA row")
}

func TestNodeMapping_SequentialAssignment(t *testing.T) {
	t.Parallel()

	m := mna.NewNodeMapping([]string{"in", "mid", "out"}, []string{"V1", "L1"})

	inIdx, ok := m.MNANodeIndex(mna.NodeIndex(1))
	require.True(t, ok)
	require.Equal(t, 0, inIdx)

	outIdx, ok := m.MNANodeIndex(mna.NodeIndex(3))
	require.True(t, ok)
	require.Equal(t, 2, outIdx)

	require.Equal(t, 3, m.MNABranchIndex(mna.BranchIndex(0)))
	require.Equal(t, 4, m.MNABranchIndex(mna.BranchIndex(1)))
	require.Equal(t, "in", m.NodeName(0))
	require.Equal(t, "L1", m.BranchName(1))
}

func TestNodeMapping_UnknownNodeIndex(t *testing.T) {
	t.Parallel()

	m := mna.NewNodeMapping([]string{"a"}, nil)
	_, ok := m.MNANodeIndex(mna.NodeIndex(99))
	require.False(t, ok)
}
