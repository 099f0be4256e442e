// Package mna defines the modified-nodal-analysis data model: the
// node/branch index space, the resolved Deck handed over by the netlist
// collaborator, and the result tables produced by the analysis drivers.
//
// Ground is a reserved sentinel excluded from the unknown vector. The MNA
// vector layout is [v_1 .. v_n | i_1 .. i_k]: n non-ground node voltages
// followed by k branch currents, one per voltage-defined device (V sources,
// inductors). Dimension N = n + k.
package mna

import "errors"

// Sentinel errors for the mna package.
var (
	// ErrGroundNotANode indicates an operation tried to resolve Ground to an
	// MNA unknown; Ground has no row/column in the system.
	ErrGroundNotANode = errors.New("mna: ground has no MNA index")

	// ErrUnknownNode indicates a NodeIndex was never registered with the
	// NodeMapping that produced it.
	ErrUnknownNode = errors.New("mna: unknown node index")

	// ErrUnknownBranch indicates a BranchIndex was never registered with the
	// NodeMapping that produced it.
	ErrUnknownBranch = errors.New("mna: unknown branch index")
)

// Ground is the reserved node index for the circuit reference node.
const Ground NodeIndex = 0

// NodeIndex identifies a circuit node, as assigned by the netlist
// collaborator. Ground is the reserved sentinel NodeIndex(0).
type NodeIndex int

// BranchIndex identifies a branch-current unknown contributed by a
// voltage-defined device (voltage source, inductor).
type BranchIndex int

// NodeMapping is the stable assignment from node/branch identity to MNA
// unknown-vector position. It is built once by the netlist collaborator and
// is immutable for the lifetime of an analysis.
type NodeMapping struct {
	// nodeToMNA maps NodeIndex -> row/col in [0, n), or -1 for Ground.
	nodeToMNA []int
	// branchToMNA maps BranchIndex -> row/col in [n, n+k).
	branchToMNA []int
	// names are used only for result-table labeling, kept in declaration order.
	nodeNames   []string
	branchNames []string
	n           int // non-ground node count
	k           int // branch-current count
}

// NewNodeMapping builds a NodeMapping from ordered node and branch names.
// nodeNames must not include Ground; Ground is implicit and always present.
// Complexity: O(n + k).
func NewNodeMapping(nodeNames, branchNames []string) *NodeMapping {
	m := &NodeMapping{
		nodeToMNA:   make([]int, len(nodeNames)+1), // +1 for the implicit Ground slot at index 0
		branchToMNA: make([]int, len(branchNames)),
		nodeNames:   append([]string(nil), nodeNames...),
		branchNames: append([]string(nil), branchNames...),
		n:           len(nodeNames),
		k:           len(branchNames),
	}

	// Ground (NodeIndex 0) never resolves to an MNA row.
	m.nodeToMNA[0] = -1
	for i := range nodeNames {
		// NodeIndex(i+1) -> MNA row i (node indices are 1-based, Ground is 0).
		m.nodeToMNA[i+1] = i
	}
	for i := range branchNames {
		// Branch unknowns follow all node unknowns.
		m.branchToMNA[i] = m.n + i
	}

	return m
}

// MNANodeIndex returns the MNA row/col for a node, or (0, false) for Ground.
// Complexity: O(1).
func (m *NodeMapping) MNANodeIndex(n NodeIndex) (int, bool) {
	if int(n) < 0 || int(n) >= len(m.nodeToMNA) {
		return 0, false
	}
	idx := m.nodeToMNA[n]
	if idx < 0 {
		return 0, false // Ground
	}

	return idx, true
}

// MNABranchIndex returns the MNA row/col for a branch-current unknown.
// Complexity: O(1).
func (m *NodeMapping) MNABranchIndex(b BranchIndex) int {
	return m.branchToMNA[b]
}

// MNAMatrixDim returns N = n + k, the dimension of the MNA system.
func (m *NodeMapping) MNAMatrixDim() int {
	return m.n + m.k
}

// NodeCount returns n, the number of non-ground node unknowns.
func (m *NodeMapping) NodeCount() int { return m.n }

// BranchCount returns k, the number of branch-current unknowns.
func (m *NodeMapping) BranchCount() int { return m.k }

// NodeName returns the display name for MNA row i < NodeCount().
func (m *NodeMapping) NodeName(i int) string { return m.nodeNames[i] }

// BranchName returns the display name for branch j < BranchCount().
func (m *NodeMapping) BranchName(j int) string { return m.branchNames[j] }
