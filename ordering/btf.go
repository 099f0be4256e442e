package ordering

import (
	"fmt"

	"github.com/nodalspice/spicekit/sparse"
)

// BlockStructure is the block-triangular-form decomposition of a square
// matrix: composed row/column permutations P, Q such that P*A*Q is block
// upper triangular, with strongly connected diagonal blocks spanning
// R[b]:R[b+1].
type BlockStructure struct {
	N       int
	NBlocks int
	R       []int // length NBlocks+1, block boundaries
	P       []int // row permutation: final row k <- original row P[k]
	Q       []int // column permutation: final col k <- original col Q[k]
	BlockOf []int // BlockOf[origCol] = block id, indexed by original column
}

// tarjanFrame is one stack frame of the iterative Tarjan DFS.
type tarjanFrame struct {
	v   int
	pos int
}

// BTF computes the block-triangular-form decomposition of a via maximum
// transversal (to expose a structurally zero-free correspondence between
// rows and columns) followed by Tarjan strongly connected components on the
// resulting column digraph (spec §4.B.2). Vertices are columns; an edge
// a -> b exists when the row matched to column a has a nonzero entry in
// column b.
//
// If a is structurally singular, unmatched columns have no outgoing edges
// and fall out of Tarjan as trivial singleton blocks; unmatched rows are
// assigned to the corresponding slots in increasing index order (there is
// no structural basis to do better — that's what singular means).
//
// Complexity: O(nnz) for the digraph construction and O(V+E) for Tarjan,
// on top of MaxTransversal's cost.
func BTF(a *sparse.CSC) (*BlockStructure, *TransversalResult, error) {
	if len(a.ColPtr) != a.N+1 {
		return nil, nil, fmt.Errorf("BTF: %w", ErrNotSquare)
	}

	trans, err := MaxTransversal(a)
	if err != nil {
		return nil, nil, fmt.Errorf("BTF: %w", err)
	}

	n := a.N
	adj := buildColumnDigraph(a, trans.RowToCol)

	blockOf, components := tarjanSCC(n, adj)

	bs := &BlockStructure{N: n, NBlocks: len(components), BlockOf: blockOf}
	bs.Q = make([]int, 0, n)
	bs.R = make([]int, len(components)+1)
	for b, comp := range components {
		bs.R[b] = len(bs.Q)
		bs.Q = append(bs.Q, comp...)
	}
	bs.R[len(components)] = n

	bs.P, err = rowPermutationFromMatching(n, bs.Q, trans.ColToRow)
	if err != nil {
		return nil, nil, fmt.Errorf("BTF: %w", err)
	}

	return bs, trans, nil
}

// buildColumnDigraph constructs the adjacency list for the column digraph
// used by BTF: for each original column b and each nonzero row i in that
// column, an edge rowToCol[i] -> b (when row i is matched).
// Complexity: O(nnz).
func buildColumnDigraph(a *sparse.CSC, rowToCol []int) [][]int {
	n := a.N
	adj := make([][]int, n)
	for b := 0; b < n; b++ {
		rows, _ := a.Col(b)
		for _, i := range rows {
			src := rowToCol[i]
			if src == -1 {
				continue // row i unmatched: no source vertex for this edge
			}
			adj[src] = append(adj[src], b)
		}
	}

	return adj
}

// tarjanSCC runs the classic iterative Tarjan algorithm over n vertices
// with the given adjacency list, returning the per-vertex block id and the
// component membership lists in topological order (edges point from
// earlier to later components, matching block-upper-triangular structure).
// Uses sentinel index -1 for UNVISITED.
// Complexity: O(V + E).
func tarjanSCC(n int, adj [][]int) (blockOf []int, componentsTopo [][]int) {
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}

	var compStack []int
	var reverseComponents [][]int // completion order == reverse topological order
	nextIndex := 0

	var frames []tarjanFrame
	for start := 0; start < n; start++ {
		if index[start] != -1 {
			continue
		}

		frames = append(frames[:0], tarjanFrame{v: start, pos: 0})
		for len(frames) > 0 {
			top := len(frames) - 1
			v := frames[top].v

			if frames[top].pos == 0 {
				index[v] = nextIndex
				lowlink[v] = nextIndex
				nextIndex++
				compStack = append(compStack, v)
				onStack[v] = true
			}

			recursed := false
			for frames[top].pos < len(adj[v]) {
				w := adj[v][frames[top].pos]
				frames[top].pos++
				if index[w] == -1 {
					frames = append(frames, tarjanFrame{v: w, pos: 0})
					recursed = true
					break
				}
				if onStack[w] && index[w] < lowlink[v] {
					lowlink[v] = index[w]
				}
			}
			if recursed {
				continue
			}

			frames = frames[:top]
			if len(frames) > 0 {
				parent := frames[len(frames)-1].v
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}

			if lowlink[v] == index[v] {
				var comp []int
				for {
					w := compStack[len(compStack)-1]
					compStack = compStack[:len(compStack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				reverseComponents = append(reverseComponents, comp)
			}
		}
	}

	// Reverse completion order into topological order (sources first).
	nb := len(reverseComponents)
	componentsTopo = make([][]int, nb)
	blockOf = make([]int, n)
	for i, comp := range reverseComponents {
		b := nb - 1 - i
		componentsTopo[b] = comp
		for _, v := range comp {
			blockOf[v] = b
		}
	}

	return blockOf, componentsTopo
}

// rowPermutationFromMatching derives the row permutation P from the column
// permutation Q and the column-to-row matching: P[k] is the row matched to
// column Q[k]. Unmatched columns (structurally singular case) are paired
// with the remaining unmatched rows in increasing index order.
func rowPermutationFromMatching(n int, q []int, colToRow []int) ([]int, error) {
	matched := make([]bool, n)
	for _, row := range colToRow {
		if row != -1 {
			matched[row] = true
		}
	}
	var leftoverRows []int
	for row := 0; row < n; row++ {
		if !matched[row] {
			leftoverRows = append(leftoverRows, row)
		}
	}

	p := make([]int, n)
	cursor := 0
	for k, col := range q {
		if row := colToRow[col]; row != -1 {
			p[k] = row
			continue
		}
		if cursor >= len(leftoverRows) {
			return nil, fmt.Errorf("rowPermutationFromMatching: ran out of unmatched rows: %w", ErrBadPermutation)
		}
		p[k] = leftoverRows[cursor]
		cursor++
	}

	return p, nil
}
