package ordering_test

import (
	"testing"

	"github.com/nodalspice/spicekit/ordering"
	"github.com/nodalspice/spicekit/sparse"
	"github.com/stretchr/testify/require"
)

// findPosition returns the position k with perm[k] == orig (or -1), i.e.
// where original row/column orig lands under P or Q, per BTF's doc comment
// ("final row k <- original row P[k]").
func findPosition(perm []int, orig int) int {
	for k, v := range perm {
		if v == orig {
			return k
		}
	}

	return -1
}

func TestBTF_BlockUpperTriangular(t *testing.T) {
	t.Parallel()

	// A = [[2,0,0],[1,3,0],[0,0,4]]: column 2 is an independent 1x1 block;
	// columns 0,1 form a 2x2 block reachable from each other only in one
	// direction (no strongly connected pair), so BTF should yield 3 blocks.
	b, err := sparse.NewMatrixBuilder(3, 3)
	require.NoError(t, err)
	_, err = b.Push(0, 0, 2)
	require.NoError(t, err)
	_, err = b.Push(0, 1, 1)
	require.NoError(t, err)
	_, err = b.Push(1, 1, 3)
	require.NoError(t, err)
	_, err = b.Push(2, 2, 4)
	require.NoError(t, err)
	a, err := b.BuildCSC()
	require.NoError(t, err)

	bs, _, err := ordering.BTF(a)
	require.NoError(t, err)
	require.Equal(t, 3, bs.NBlocks)

	// Verify (PAQ) is block upper triangular: for every stored (i,j) with
	// row-position(i) in block b, col-position(j) must be >= R[b].
	for j := 0; j < a.N; j++ {
		rows, _ := a.Col(j)
		for _, i := range rows {
			rowPos := findPosition(bs.P, i)
			colPos := findPosition(bs.Q, j)
			var block int
			for bk := 0; bk < bs.NBlocks; bk++ {
				if rowPos >= bs.R[bk] && rowPos < bs.R[bk+1] {
					block = bk
					break
				}
			}
			require.GreaterOrEqualf(t, colPos, bs.R[block], "entry (%d,%d) violates block-upper-triangular shape", i, j)
		}
	}
}

func TestBTF_NonSquareRejected(t *testing.T) {
	t.Parallel()

	a := &sparse.CSC{N: 2, ColPtr: []int{0, 0}}
	_, _, err := ordering.BTF(a)
	require.ErrorIs(t, err, ordering.ErrNotSquare)
}
