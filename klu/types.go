package klu

// ScaleMode selects how Rs[] row-scale factors are computed (spec §4.C.3).
type ScaleMode int

const (
	// ScaleNone disables row scaling.
	ScaleNone ScaleMode = iota
	// ScaleSum sets Rs[i] = sum_j |A[i,j]|.
	ScaleSum
	// ScaleMax sets Rs[i] = max_j |A[i,j]|.
	ScaleMax
)

// Ordering selects the fill-reducing ordering strategy. AMD is the only
// supported value; the type exists, per spec §4.B.3, "with room to extend".
type Ordering int

// OrderingAMD is the sole supported ordering.
const OrderingAMD Ordering = 0

// Default tuning constants (spec §4.C.2, §7).
const (
	DefaultPivotTol  = 0.001
	DefaultMemGrow   = 1.2
	DefaultMaxBlock0 = 8 // blocks at or below this size skip AMD (ordering §4.B.3)
)

// Config holds analyze/factor tuning knobs, following the teacher's
// functional-options-with-documented-defaults convention.
type Config struct {
	// BTF enables block-triangular-form detection during Analyze. When
	// false, the whole matrix is treated as a single block.
	BTF bool
	// Scale selects the row-scaling mode applied during factor/refactor.
	Scale ScaleMode
	// Ordering selects the per-block fill-reducing ordering.
	Ordering Ordering
	// PivotTol is the diagonal-preference partial-pivoting threshold
	// (spec §4.C.2 step 4): the diagonal candidate is kept when
	// |diag| >= PivotTol * max(|other candidates|).
	PivotTol float64
	// MemGrow is the LU growth factor (spec §4.C.2 step 7). Factor and
	// Refactor do not read it: packed LU storage grows through Go's append.
	MemGrow float64
	// HaltIfSingular, when true, makes Factor/Refactor return ErrSingular
	// on a zero pivot instead of recording NumericalRank and continuing.
	HaltIfSingular bool
	// AggressiveAbsorption enables AMD's optional aggressive element
	// absorption (spec §4.B.3); unused by the exact-degree AMD
	// implementation here but kept for config-surface compatibility.
	AggressiveAbsorption bool
}

// Option configures a Config; see the teacher's functional-options pattern.
type Option func(*Config)

// WithBTF toggles block-triangular-form detection.
func WithBTF(enabled bool) Option { return func(c *Config) { c.BTF = enabled } }

// WithScale selects the row-scaling mode.
func WithScale(mode ScaleMode) Option { return func(c *Config) { c.Scale = mode } }

// WithPivotTol overrides the diagonal-preference pivoting tolerance.
func WithPivotTol(tol float64) Option { return func(c *Config) { c.PivotTol = tol } }

// WithHaltIfSingular toggles whether a zero pivot is a hard failure.
func WithHaltIfSingular(halt bool) Option { return func(c *Config) { c.HaltIfSingular = halt } }

// DefaultConfig returns a Config with the spec's documented defaults: BTF
// and AMD enabled, no scaling, PivotTol=0.001, MemGrow=1.2, and
// HaltIfSingular=true (a zero pivot returns ErrSingular).
func DefaultConfig(opts ...Option) Config {
	cfg := Config{
		BTF:            true,
		Scale:          ScaleNone,
		Ordering:       OrderingAMD,
		PivotTol:       DefaultPivotTol,
		MemGrow:        DefaultMemGrow,
		HaltIfSingular: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// Symbolic is the per-matrix analysis artifact (spec §3): block structure
// and the composed row/column permutations to upper block-triangular form,
// plus per-block fill estimates used to preallocate Numeric's LU storage.
type Symbolic struct {
	N              int
	Nnz            int
	NBlocks        int
	MaxBlock       int
	StructuralRank int

	P []int // row permutation to BTF+AMD order
	Q []int // column permutation to BTF+AMD order
	R []int // length NBlocks+1, block boundaries in P/Q space

	LnzEst []int // per-block estimated L nonzeros
	UnzEst []int // per-block estimated U nonzeros

	NzOff int // nonzeros of A outside the diagonal blocks
}

// BlockRange returns the [lo, hi) column range (in P/Q space) of block b.
func (s *Symbolic) BlockRange(b int) (lo, hi int) { return s.R[b], s.R[b+1] }

// Numeric is the per-factorization artifact (spec §3): packed per-block LU
// storage, the final (possibly re-pivoted) permutations, off-diagonal-block
// entries, optional row scaling, and the reusable O(maxblock) workspace.
type Numeric struct {
	sym *Symbolic

	// Per-block packed LU storage: Lip[k]/Uip[k] are entry indices into
	// lu[b], Llen[k]/Ulen[k] the entry counts, all indexed within the
	// block (k relative to the block's own column numbering).
	lu   [][]luEntry // per block, packed column by column: each column's U entries, then its L entries
	Lip  [][]int
	Uip  [][]int
	Llen [][]int
	Ulen [][]int

	Udiag []float64 // length N, diagonal of U in pivotal order

	Pnum  []int // final pivot row permutation, composed with sym.P
	Pinv  []int // inverse of Pnum

	Offp []int // length N+1
	Offi []int
	Offx []float64

	Rs []float64 // length N, row scale factors (nil if ScaleNone)

	NumericalRank int // first column at which a zero pivot was recorded, or sym.N if none

	// Workspace, allocated afresh by each Factor and Refactor call and
	// reused across the blocks of that call.
	x      []float64
	flag   []int
	apPos  []int
	lpend  []int
	stack  []int
	reallocs int
}

// luEntry is one (row, value) pair in a block's packed LU storage.
type luEntry struct {
	row int
	val float64
}

// Symbolic returns the Symbolic artifact this Numeric was built against.
func (num *Numeric) Symbolic() *Symbolic { return num.sym }
