package ordering

import (
	"sort"

	"github.com/nodalspice/spicekit/sparse"
)

// SymmetricPattern is the strict upper/lower-triangular-deduplicated
// adjacency of pattern(A) + pattern(Aᵀ) for a square matrix A: Adj[i]
// holds the distinct, sorted neighbors of i (i excluded), used both by AMD
// and as the fill-in graph for its elimination quotient structure.
type SymmetricPattern struct {
	N   int
	Adj [][]int
}

// BuildAAT constructs the symmetric pattern B = pattern(A) + pattern(Aᵀ) of
// a (spec §4.B.3): a counting phase sizes each column's raw (possibly
// duplicated, mixed-triangle) neighbor list, and a compaction phase sorts
// and dedupes each list. Diagonal entries are dropped — they never
// contribute fill to an off-diagonal elimination graph.
// Complexity: O(nnz log nnz) (dominated by the per-row sort).
func BuildAAT(a *sparse.CSC) *SymmetricPattern {
	n := a.N

	// Stage 1: count raw (pre-dedup) edges each vertex will receive from
	// both triangles, to preallocate exactly.
	counts := make([]int, n)
	for j := 0; j < n; j++ {
		rows, _ := a.Col(j)
		for _, i := range rows {
			if i == j {
				continue
			}
			counts[i]++ // edge i -> j (from column j's entry at row i)
			counts[j]++ // edge j -> i (symmetric counterpart)
		}
	}

	adj := make([][]int, n)
	for i := range adj {
		adj[i] = make([]int, 0, counts[i])
	}

	// Stage 2: fill raw (possibly duplicated) adjacency.
	for j := 0; j < n; j++ {
		rows, _ := a.Col(j)
		for _, i := range rows {
			if i == j {
				continue
			}
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}

	// Stage 3: sort + dedupe each row (a (i,j) pair with both A[i,j]!=0
	// and A[j,i]!=0 is present in adj[i] twice at this point).
	for i := range adj {
		if len(adj[i]) <= 1 {
			continue
		}
		sort.Ints(adj[i])
		w := 1
		for r := 1; r < len(adj[i]); r++ {
			if adj[i][r] != adj[i][w-1] {
				adj[i][w] = adj[i][r]
				w++
			}
		}
		adj[i] = adj[i][:w]
	}

	return &SymmetricPattern{N: n, Adj: adj}
}
