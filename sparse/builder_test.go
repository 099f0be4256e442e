package sparse_test

import (
	"testing"

	"github.com/nodalspice/spicekit/sparse"
	"github.com/stretchr/testify/require"
)

func TestMatrixBuilder_BuildCSC_CoalescesDuplicates(t *testing.T) {
	t.Parallel()

	b, err := sparse.NewMatrixBuilder(3, 3)
	require.NoError(t, err)

	_, err = b.Push(0, 0, 2.0)
	require.NoError(t, err)
	id2, err := b.Push(0, 0, 3.0) // duplicate (col,row): must coalesce and sum
	require.NoError(t, err)
	_, err = b.Push(1, 2, 5.0)
	require.NoError(t, err)

	a, err := b.BuildCSC()
	require.NoError(t, err)
	require.NoError(t, a.CheckInvariants())
	require.Equal(t, 2, a.Nnz())

	rows, vals := a.Col(0)
	require.Equal(t, []int{0}, rows)
	require.InDelta(t, 5.0, vals[0], 1e-12)

	_ = id2
}

func TestMatrixBuilder_BuildCSCPattern_EntryMapAgreesOnDuplicates(t *testing.T) {
	t.Parallel()

	b, err := sparse.NewMatrixBuilder(2, 2)
	require.NoError(t, err)

	idA, err := b.Push(1, 0, 0)
	require.NoError(t, err)
	idB, err := b.Push(1, 0, 0) // same (col,row) as idA
	require.NoError(t, err)
	idC, err := b.Push(0, 1, 0) // distinct coordinate
	require.NoError(t, err)

	a, entryMap, err := b.BuildCSCPattern()
	require.NoError(t, err)
	require.NoError(t, a.CheckInvariants())

	require.Equal(t, entryMap[idA], entryMap[idB])
	require.NotEqual(t, entryMap[idA], entryMap[idC])
	for _, v := range a.Values {
		require.Zero(t, v, "BuildCSCPattern must zero every value")
	}
}

func TestMatrixBuilder_Push_OutOfRange(t *testing.T) {
	t.Parallel()

	b, err := sparse.NewMatrixBuilder(2, 2)
	require.NoError(t, err)

	_, err = b.Push(2, 0, 1)
	require.ErrorIs(t, err, sparse.ErrOutOfRange)
}

func TestNewMatrixBuilder_BadShape(t *testing.T) {
	t.Parallel()

	_, err := sparse.NewMatrixBuilder(0, 3)
	require.ErrorIs(t, err, sparse.ErrBadShape)
}
