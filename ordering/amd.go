package ordering

import "sort"

// Permutation is a fill-reducing ordering: Perm[k] is the original variable
// placed at position k, Inverse is its inverse (Inverse[Perm[k]] == k).
type Permutation struct {
	Perm    []int
	Inverse []int
}

// Info carries the diagnostics AMD accumulates while ordering a block:
// elimination-tree parent pointers (for postorder/front analysis), an
// estimated fill count, and how many variables were deferred as dense.
type Info struct {
	Parent     []int // elimination forest parent, -1 for a root
	Lnz        int   // estimated nonzeros in L (fill estimate)
	NDense     int   // number of variables deferred as dense
	Flops      int   // flop count; AMD does not compute it and leaves it 0
}

// denseDegreeThreshold returns the degree above which a variable is
// deferred to the end of the ordering as "dense" (spec §4.B.3: "degree >
// ~10·√n, clamped"): ⌈10·√n⌉, clamped to at least 16.
func denseDegreeThreshold(n int) int {
	t := 0
	for t*t < 100*n {
		t++
	}
	if t < 16 {
		t = 16
	}

	return t
}

// AMD orders the columns of a symmetric pattern to reduce fill-in during
// LU(Aᵀ)/Cholesky-style elimination, following Amestoy/Davis/Duff's
// quotient-graph algorithm (spec §4.B.3): pick a minimum-degree pivot,
// absorb its adjacent elements into a new element, merge indistinguishable
// supervariables, mass-eliminate fully interior variables, and defer
// very-high-degree ("dense") variables to the end.
//
// Degree updates here use the exact quotient-graph degree (a direct set
// union over each variable's remaining element and variable lists) rather
// than AMD's approximate degree bound; see DESIGN.md for the rationale —
// block sizes in an MNA Jacobian are small enough that the exact count is
// cheap, and it never under-estimates fill the way the approximate bound
// can.
//
// Blocks of size <= 3 are ordered identity (spec §4.B.3).
// Complexity: bounded by the quotient-graph elimination process, roughly
// O(n + sum of degree^2) for the degree recomputation sweeps.
func AMD(sym *SymmetricPattern) (*Permutation, *Info, error) {
	n := sym.N
	if n <= 3 {
		id := make([]int, n)
		for i := range id {
			id[i] = i
		}

		return &Permutation{Perm: id, Inverse: append([]int(nil), id...)}, &Info{Parent: identityParents(n)}, nil
	}

	qg := newQuotientGraph(sym)
	denseCutoff := denseDegreeThreshold(n)

	var order []int   // elimination order, including mass-eliminated variables
	var dense []int   // variables deferred for being too dense

	// Defer dense variables up front: a variable whose *initial* degree
	// already exceeds the cutoff is set aside and ordered last.
	for i := 0; i < n; i++ {
		if qg.alive[i] && qg.degree[i] > denseCutoff {
			qg.removeFromDegreeList(i)
			qg.alive[i] = false
			dense = append(dense, i)
		}
	}

	remaining := 0
	for i := 0; i < n; i++ {
		if qg.alive[i] {
			remaining++
		}
	}

	for remaining > 0 {
		me := qg.pickMinDegreePivot()
		qg.removeFromDegreeList(me)

		lme := qg.buildElement(me)
		order = append(order, me)
		remaining--

		qg.updateNeighborsAndDegrees(lme, me, denseCutoff, &dense, &remaining)

		// Mass elimination: variables whose entire remaining adjacency is
		// exactly {me} (no external variables, no other elements) are
		// eliminated alongside me — they can never reduce anyone else's
		// fill by staying alive.
		for _, i := range lme {
			if qg.alive[i] && qg.isMassEliminable(i, me) {
				qg.removeFromDegreeList(i)
				qg.alive[i] = false
				qg.parent[i] = me
				qg.nv[me] += qg.nv[i]
				order = append(order, i)
				remaining--
			}
		}
	}

	order = append(order, dense...)
	for _, d := range dense {
		if qg.parent[d] == -1 {
			// dense variables with no parent remain roots of the forest
		}
	}

	info := &Info{Parent: qg.parent, NDense: len(dense), Lnz: qg.lnzEstimate}

	perm := postorderForest(n, qg.parent, order)
	inv := make([]int, n)
	for k, v := range perm {
		inv[v] = k
	}

	return &Permutation{Perm: perm, Inverse: inv}, info, nil
}

func identityParents(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = -1
	}

	return p
}

// postorderForest produces the final permutation by visiting the
// elimination forest (parent[]) in postorder, processing roots in
// elimination order and children in elimination order, followed by the
// variables merged into them as supervariables (which never enter
// elimOrder). This groups each pivot's mass-eliminated children next to it
// for cache-friendly factorization (spec §4.B.3).
func postorderForest(n int, parent []int, elimOrder []int) []int {
	children := make([][]int, n)
	roots := make([]int, 0, n)
	seenRoot := make([]bool, n)
	inOrder := make([]bool, n)
	for _, v := range elimOrder {
		inOrder[v] = true
		p := parent[v]
		if p == -1 {
			if !seenRoot[v] {
				roots = append(roots, v)
				seenRoot[v] = true
			}
			continue
		}
		children[p] = append(children[p], v)
	}
	for v := 0; v < n; v++ {
		if !inOrder[v] && parent[v] != -1 {
			children[parent[v]] = append(children[parent[v]], v)
		}
	}

	out := make([]int, 0, n)
	var visit func(v int)
	visit = func(v int) {
		for _, c := range children[v] {
			visit(c)
		}
		out = append(out, v)
	}
	for _, r := range roots {
		visit(r)
	}

	return out
}

// quotientGraph is the elimination working set: for every alive vertex
// (either an un-eliminated variable or a not-yet-absorbed element),
// adjVar holds variable neighbors and adjElem holds element neighbors.
// Eliminated pivots become elements: elemMembers holds their boundary set.
type quotientGraph struct {
	n            int
	alive        []bool
	isElement    []bool
	nv           []int
	degree       []int
	adjVar       [][]int
	adjElem      [][]int
	elemMembers  [][]int
	parent       []int
	lnzEstimate  int

	// degree-bucketed doubly linked list: head[d] is the first variable
	// with external degree d, or -1; prev/next link siblings within a
	// bucket.
	head       []int
	prev, next []int
	maxDegSeen int
}

func newQuotientGraph(sym *SymmetricPattern) *quotientGraph {
	n := sym.N
	qg := &quotientGraph{
		n:           n,
		alive:       make([]bool, n),
		isElement:   make([]bool, n),
		nv:          make([]int, n),
		degree:      make([]int, n),
		adjVar:      make([][]int, n),
		adjElem:     make([][]int, n),
		elemMembers: make([][]int, n),
		parent:      identityParents(n),
		prev:        make([]int, n),
		next:        make([]int, n),
	}
	for i := 0; i < n; i++ {
		qg.alive[i] = true
		qg.nv[i] = 1
		qg.adjVar[i] = append([]int(nil), sym.Adj[i]...)
		qg.degree[i] = len(qg.adjVar[i])
	}

	maxDeg := 0
	for _, d := range qg.degree {
		if d > maxDeg {
			maxDeg = d
		}
	}
	qg.maxDegSeen = maxDeg
	qg.head = make([]int, maxDeg+1)
	for d := range qg.head {
		qg.head[d] = -1
	}
	for i := 0; i < n; i++ {
		qg.prev[i] = -1
		qg.next[i] = -1
	}
	for i := 0; i < n; i++ {
		qg.pushDegreeList(i, qg.degree[i])
	}

	return qg
}

func (qg *quotientGraph) ensureDegreeCapacity(d int) {
	for d >= len(qg.head) {
		qg.head = append(qg.head, -1)
	}
}

func (qg *quotientGraph) pushDegreeList(i, d int) {
	qg.ensureDegreeCapacity(d)
	qg.prev[i] = -1
	qg.next[i] = qg.head[d]
	if qg.head[d] != -1 {
		qg.prev[qg.head[d]] = i
	}
	qg.head[d] = i
}

// removeFromDegreeList unlinks i from whatever bucket it currently sits in,
// splicing prev/next. When i is a bucket head, the bucket is found through
// qg.degree[i], so that must still hold the degree i was pushed with.
func (qg *quotientGraph) removeFromDegreeList(i int) {
	p, nx := qg.prev[i], qg.next[i]
	if p != -1 {
		qg.next[p] = nx
	} else {
		// i might be a bucket head; scan is avoided by recording degree.
		d := qg.degree[i]
		if d < len(qg.head) && qg.head[d] == i {
			qg.head[d] = nx
		}
	}
	if nx != -1 {
		qg.prev[nx] = p
	}
	qg.prev[i] = -1
	qg.next[i] = -1
}

func (qg *quotientGraph) pickMinDegreePivot() int {
	for d := 0; d < len(qg.head); d++ {
		if qg.head[d] != -1 {
			return qg.head[d]
		}
	}

	panic("ordering: AMD degree lists exhausted with variables still alive")
}

// buildElement forms Lme, the new element's boundary variable set: the
// union of me's variable neighbors and the members of every element
// adjacent to me, excluding me itself and any dead vertex. Absorbed
// elements are marked dead and given me as their parent.
func (qg *quotientGraph) buildElement(me int) []int {
	seen := map[int]bool{me: true}
	var lme []int

	for _, v := range qg.adjVar[me] {
		if qg.alive[v] && !seen[v] {
			seen[v] = true
			lme = append(lme, v)
		}
	}
	for _, e := range qg.adjElem[me] {
		for _, v := range qg.elemMembers[e] {
			if qg.alive[v] && !seen[v] {
				seen[v] = true
				lme = append(lme, v)
			}
		}
		qg.parent[e] = me
		qg.alive[e] = false
	}

	sort.Ints(lme)
	qg.elemMembers[me] = lme
	qg.isElement[me] = true
	qg.adjElem[me] = nil
	qg.adjVar[me] = nil
	qg.lnzEstimate += len(lme) * qg.nv[me]

	return lme
}

// updateNeighborsAndDegrees updates every member of the new element me's
// boundary list: its adjElem now points at me instead of me's absorbed
// elements, me is dropped from its adjVar, and its exact external degree is
// recomputed. Variables whose new degree exceeds the dense cutoff are
// deferred. Indistinguishable supervariables (identical resulting
// adjacency) are merged.
func (qg *quotientGraph) updateNeighborsAndDegrees(lme []int, me int, denseCutoff int, dense *[]int, remaining *int) {
	// Stage 1: per-member bookkeeping (drop me/absorbed elements, add me).
	for _, i := range lme {
		qg.adjVar[i] = removeValue(qg.adjVar[i], me)
		qg.adjElem[i] = filterAlive(qg.adjElem[i], qg.alive)
		qg.adjElem[i] = appendUnique(qg.adjElem[i], me)
	}

	// Stage 2: exact degree recomputation + supervariable detection via a
	// hash of each member's resulting (sorted) adjacency signature.
	sigOf := make(map[string][]int, len(lme))
	for _, i := range lme {
		if !qg.alive[i] {
			continue
		}
		union := qg.exactExternalNeighbors(i)
		qg.removeFromDegreeList(i) // unlink while degree[i] still names its bucket
		qg.degree[i] = len(union)
		sig := signature(qg.adjVar[i], qg.adjElem[i])
		sigOf[sig] = append(sigOf[sig], i)
	}

	for _, group := range sigOf {
		if len(group) < 2 {
			continue
		}
		survivor := group[0]
		for _, dup := range group[1:] {
			if !qg.alive[dup] || !qg.alive[survivor] {
				continue
			}
			qg.removeFromDegreeList(dup)
			qg.alive[dup] = false
			qg.nv[survivor] += qg.nv[dup]
			qg.parent[dup] = survivor
			*remaining--
		}
	}

	// Stage 3: (re)seat surviving members in the degree lists.
	for _, i := range lme {
		if !qg.alive[i] {
			continue
		}
		qg.removeFromDegreeList(i)
		if qg.degree[i] > denseCutoff {
			qg.alive[i] = false
			*dense = append(*dense, i)
			*remaining--
			continue
		}
		qg.pushDegreeList(i, qg.degree[i])
	}
}

// exactExternalNeighbors computes the current external-degree neighbor set
// of variable i: the union of its remaining variable neighbors and the
// members of every element it still touches, excluding i itself.
func (qg *quotientGraph) exactExternalNeighbors(i int) map[int]bool {
	union := make(map[int]bool)
	for _, v := range qg.adjVar[i] {
		if qg.alive[v] && v != i {
			union[v] = true
		}
	}
	for _, e := range qg.adjElem[i] {
		for _, v := range qg.elemMembers[e] {
			if qg.alive[v] && v != i {
				union[v] = true
			}
		}
	}

	return union
}

// isMassEliminable reports whether variable i's only remaining connection
// is the freshly formed element me, with no other variable or element
// neighbors — i.e. i is now fully interior and can be eliminated for free.
func (qg *quotientGraph) isMassEliminable(i, me int) bool {
	if len(qg.adjVar[i]) != 0 {
		return false
	}
	if len(qg.adjElem[i]) != 1 || qg.adjElem[i][0] != me {
		return false
	}

	return true
}

func removeValue(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}

	return s
}

func filterAlive(s []int, alive []bool) []int {
	w := 0
	for _, x := range s {
		if alive[x] {
			s[w] = x
			w++
		}
	}

	return s[:w]
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}

	return append(s, v)
}

// signature builds a deterministic string key for a variable's current
// (adjVar, adjElem) pair, used to detect indistinguishable supervariables:
// two variables with identical sorted adjacency are structurally
// interchangeable and can be merged into one.
func signature(adjVar, adjElem []int) string {
	av := append([]int(nil), adjVar...)
	ae := append([]int(nil), adjElem...)
	sort.Ints(av)
	sort.Ints(ae)

	buf := make([]byte, 0, (len(av)+len(ae))*5+2)
	for _, v := range av {
		buf = appendIntByte(buf, v)
	}
	buf = append(buf, '|')
	for _, e := range ae {
		buf = appendIntByte(buf, e)
	}

	return string(buf)
}

func appendIntByte(buf []byte, v int) []byte {
	for v > 0 {
		buf = append(buf, byte(v&0xff))
		v >>= 8
	}
	buf = append(buf, ',')

	return buf
}
