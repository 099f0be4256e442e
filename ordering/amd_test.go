package ordering_test

import (
	"testing"

	"github.com/nodalspice/spicekit/ordering"
	"github.com/stretchr/testify/require"
)

func requirePermutation(t *testing.T, n int, perm []int) {
	t.Helper()
	require.Len(t, perm, n)
	seen := make([]bool, n)
	for _, p := range perm {
		require.GreaterOrEqual(t, p, 0)
		require.Less(t, p, n)
		require.False(t, seen[p], "duplicate entry %d in permutation", p)
		seen[p] = true
	}
}

func TestAMD_TrivialSizeIsIdentity(t *testing.T) {
	t.Parallel()

	sym := &ordering.SymmetricPattern{N: 2, Adj: [][]int{{1}, {0}}}
	perm, info, err := ordering.AMD(sym)
	require.NoError(t, err)
	requirePermutation(t, 2, perm.Perm)
	require.Equal(t, []int{0, 1}, perm.Perm)
	require.Equal(t, 0, info.NDense)
}

func TestAMD_ChainGraph(t *testing.T) {
	t.Parallel()

	// A path graph 0-1-2-3-4: each interior vertex has degree 2. Whatever
	// order AMD picks, it must be a valid permutation and the elimination
	// tree's parent pointers must only reference valid indices or -1.
	n := 5
	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			adj[i] = append(adj[i], i-1)
		}
		if i < n-1 {
			adj[i] = append(adj[i], i+1)
		}
	}
	sym := &ordering.SymmetricPattern{N: n, Adj: adj}

	perm, info, err := ordering.AMD(sym)
	require.NoError(t, err)
	requirePermutation(t, n, perm.Perm)
	require.Len(t, perm.Inverse, n)
	for k, p := range perm.Perm {
		require.Equal(t, k, perm.Inverse[p])
	}
	require.Len(t, info.Parent, n)
	for _, par := range info.Parent {
		require.True(t, par == -1 || (par >= 0 && par < n))
	}
}

func TestAMD_DenseVariablesDeferredToEnd(t *testing.T) {
	t.Parallel()

	// A star graph: the hub touches every other vertex (degree 199, over the
	// ⌈10·√200⌉ = 142 dense threshold), so it must be ordered last among
	// dense variables (spec §8: permutation "begins with non-dense variables,
	// followed by dense ones").
	n := 200
	adj := make([][]int, n)
	for i := 1; i < n; i++ {
		adj[0] = append(adj[0], i)
		adj[i] = append(adj[i], 0)
	}
	sym := &ordering.SymmetricPattern{N: n, Adj: adj}

	perm, info, err := ordering.AMD(sym)
	require.NoError(t, err)
	requirePermutation(t, n, perm.Perm)
	if info.NDense > 0 {
		// Dense variables occupy the tail of Perm.
		for _, p := range perm.Perm[n-info.NDense:] {
			require.NotEqual(t, -1, p)
		}
	}
}
