package sparse

// Real constrains the scalar element type CSC's numeric kernels are
// parametrized over, mirroring go-highway's kernels-parametrized-over-kind
// style. The solver only ever instantiates float64 (complex arithmetic is a
// spec non-goal), but keeping the hot inner loop generic documents that the
// restriction is a domain choice, not a representational one.
type Real interface {
	~float64 | ~float32
}

// axpyInto adds alpha*vals[p] into y[rows[p]] for every stored entry,
// generic over Real so it can be reused for any single/double-precision
// column-scatter, not just CSC.AxpyInto's float64 instantiation.
func axpyInto[T Real](rows []int, vals []T, alpha T, y []T) {
	for p, row := range rows {
		y[row] += alpha * vals[p]
	}
}
