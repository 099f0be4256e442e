package sparse

import "fmt"

// EntryID is the issue-order index of a Push call on a MatrixBuilder.
type EntryID int

// EntryMap maps an EntryID to its final nonzero slot in the built CSC.
// EntryMap[a] == EntryMap[b] whenever entries a and b were pushed with the
// identical (col,row) pair; restricted to distinct coordinates, EntryMap is
// injective.
type EntryMap []int

// triplet is one pending (col,row,value) request together with the order it
// was issued in, so EntryMap can be returned indexed by issue order after
// sorting.
type triplet struct {
	col, row int
	value    float64
	issue    int
}

// MatrixBuilder accumulates triplet stamp requests and compacts them into a
// canonical CSC. It is the only supported way to construct a CSC: device
// registration calls Push once per matrix position it will ever touch, then
// BuildCSCPattern hands back the stable nnz slot for each of those calls.
type MatrixBuilder struct {
	nrows, ncols int
	entries      []triplet
}

// NewMatrixBuilder creates a builder for an nrows x ncols matrix (the
// solver only ever builds square nrows==ncols MNA systems, but the builder
// itself is shape-agnostic).
func NewMatrixBuilder(nrows, ncols int) (*MatrixBuilder, error) {
	if nrows <= 0 || ncols <= 0 {
		return nil, fmt.Errorf("NewMatrixBuilder: %dx%d: %w", nrows, ncols, ErrBadShape)
	}

	return &MatrixBuilder{nrows: nrows, ncols: ncols}, nil
}

// Push records a stamp request at (col,row) with a placeholder value and
// returns the EntryID to retrieve its final nnz slot after BuildCSCPattern.
// Duplicate (col,row) requests are legal and coalesce to the same slot.
// Complexity: O(1) amortized.
func (b *MatrixBuilder) Push(col, row int, value float64) (EntryID, error) {
	if col < 0 || col >= b.ncols || row < 0 || row >= b.nrows {
		return 0, fmt.Errorf("Push: (col=%d,row=%d) out of %dx%d: %w", col, row, b.ncols, b.nrows, ErrOutOfRange)
	}
	id := EntryID(len(b.entries))
	b.entries = append(b.entries, triplet{col: col, row: row, value: value, issue: int(id)})

	return id, nil
}

// BuildCSC compacts the pushed triplets into a canonical CSC, summing
// values of coalesced duplicate (col,row) entries.
// Complexity: O((nnz+N) log nnz).
func (b *MatrixBuilder) BuildCSC() (*CSC, error) {
	a, _, err := b.build(true)
	return a, err
}

// BuildCSCPattern compacts the pushed triplets into a canonical CSC (all
// values zero — a pattern, not a value build) and returns the EntryMap from
// issue order to final nnz slot.
// Complexity: O((nnz+N) log nnz).
func (b *MatrixBuilder) BuildCSCPattern() (*CSC, EntryMap, error) {
	return b.build(false)
}

// build is the shared compaction routine. When sumValues is true, values of
// coalesced duplicates are summed (BuildCSC semantics); when false, stored
// values are zeroed (BuildCSCPattern semantics, used purely for slot
// resolution) and an EntryMap is populated.
func (b *MatrixBuilder) build(sumValues bool) (*CSC, EntryMap, error) {
	n := b.ncols
	if b.nrows > n {
		// CSC/EntryMap addressing below assumes a single dimension for
		// bucket counts; the solver only ever builds square systems, but
		// guard the general case defensively.
		n = b.nrows
	}

	out, err := NewCSC(n, len(b.entries))
	if err != nil {
		return nil, nil, fmt.Errorf("build: %w", err)
	}

	// Stage 1: bucket count per column (stable order within a column is
	// established by a subsequent pass over sorted-by-row buckets).
	colCount := make([]int, n)
	for _, t := range b.entries {
		colCount[t.col]++
	}
	// Bucket start offsets per column, reused below as write cursors.
	colStart := make([]int, n+1)
	for j := 0; j < n; j++ {
		colStart[j+1] = colStart[j] + colCount[j]
	}

	// Stage 2: scatter entries into per-column buckets (unsorted by row
	// within the bucket).
	scratch := make([]bucketed, len(b.entries))
	cursor := append([]int(nil), colStart[:n]...)
	for _, t := range b.entries {
		dst := cursor[t.col]
		scratch[dst] = bucketed{row: t.row, value: t.value, issue: t.issue}
		cursor[t.col]++
	}

	// Stage 3: within each column, sort by row (insertion sort: columns in
	// an MNA pattern builder carry only a handful of entries), coalesce
	// duplicates, and emit the final CSC + EntryMap.
	entryMap := make(EntryMap, len(b.entries))
	pos := 0
	for j := 0; j < n; j++ {
		lo, hi := colStart[j], colStart[j+1]
		col := scratch[lo:hi]
		insertionSortByRow(col)

		var prevRow = -1
		for _, e := range col {
			if e.row == prevRow {
				// Coalesce into the previously emitted slot.
				slot := pos - 1
				if sumValues {
					out.Values[slot] += e.value
				}
				entryMap[e.issue] = slot
				continue
			}
			out.RowIdx = append(out.RowIdx, e.row)
			if sumValues {
				out.Values = append(out.Values, e.value)
			} else {
				out.Values = append(out.Values, 0)
			}
			entryMap[e.issue] = pos
			prevRow = e.row
			pos++
		}
		out.ColPtr[j+1] = pos
	}

	return out, entryMap, nil
}

// bucketed is one (row,value,issue) entry already routed to its column
// bucket during MatrixBuilder.build.
type bucketed struct {
	row   int
	value float64
	issue int
}

// insertionSortByRow sorts a small slice of bucketed entries by Row. Used
// instead of sort.Slice because MNA columns are sparse (a handful of
// entries per device terminal); insertion sort avoids interface-dispatch
// overhead on the hot analyze path.
func insertionSortByRow(s []bucketed) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].row < s[j-1].row; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
