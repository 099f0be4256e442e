package klu_test

import (
	"math"
	"testing"

	"github.com/nodalspice/spicekit/klu"
	"github.com/nodalspice/spicekit/sparse"
	"github.com/stretchr/testify/require"
)

// buildCSC constructs a CSC from a dense matrix for test convenience; real
// callers always go through sparse.MatrixBuilder, which this exercises.
func buildCSC(t *testing.T, dense [][]float64) *sparse.CSC {
	t.Helper()
	n := len(dense)
	b, err := sparse.NewMatrixBuilder(n, n)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dense[i][j] != 0 {
				_, err := b.Push(j, i, dense[i][j])
				require.NoError(t, err)
			}
		}
	}
	a, err := b.BuildCSC()
	require.NoError(t, err)

	return a
}

// residualInf computes ||A*x - b||_inf against the original dense matrix.
func residualInf(dense [][]float64, x, b []float64) float64 {
	n := len(dense)
	var maxResid float64
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += dense[i][j] * x[j]
		}
		r := math.Abs(sum - b[i])
		if r > maxResid {
			maxResid = r
		}
	}

	return maxResid
}

func wellConditioned3x3() [][]float64 {
	return [][]float64{
		{4, 1, 0},
		{1, 3, 1},
		{0, 1, 5},
	}
}

func TestAnalyzeFactorSolve_SatisfiesResidualBound(t *testing.T) {
	t.Parallel()

	dense := wellConditioned3x3()
	a := buildCSC(t, dense)
	cfg := klu.DefaultConfig()

	sym, err := klu.Analyze(a, cfg)
	require.NoError(t, err)
	num, err := klu.Factor(a, sym, cfg)
	require.NoError(t, err)

	b := []float64{1, 2, 3}
	x := append([]float64(nil), b...)
	require.NoError(t, klu.Solve(sym, num, 3, 1, x))

	resid := residualInf(dense, x, b)
	require.Less(t, resid, 1e-10)
}

func TestRefactor_MatchesFreshFactor(t *testing.T) {
	t.Parallel()

	dense := wellConditioned3x3()
	a := buildCSC(t, dense)
	cfg := klu.DefaultConfig()

	sym, err := klu.Analyze(a, cfg)
	require.NoError(t, err)
	num, err := klu.Factor(a, sym, cfg)
	require.NoError(t, err)

	// Same nonzero pattern, different values.
	dense2 := [][]float64{
		{6, 2, 0},
		{2, 5, 1},
		{0, 1, 7},
	}
	a2 := buildCSC(t, dense2)

	num2, err := klu.Refactor(a2, sym, num, cfg)
	require.NoError(t, err)

	b := []float64{3, -1, 2}
	x := append([]float64(nil), b...)
	require.NoError(t, klu.Solve(sym, num2, 3, 1, x))

	resid := residualInf(dense2, x, b)
	require.Less(t, resid, 1e-10)
}

func TestSolve_MultipleRHSChunking(t *testing.T) {
	t.Parallel()

	dense := wellConditioned3x3()
	a := buildCSC(t, dense)
	cfg := klu.DefaultConfig()

	sym, err := klu.Analyze(a, cfg)
	require.NoError(t, err)
	num, err := klu.Factor(a, sym, cfg)
	require.NoError(t, err)

	const nrhs = 5 // exceeds rhsChunk=4, forces a second chunk
	b := make([]float64, 3*nrhs)
	for r := 0; r < nrhs; r++ {
		b[0*nrhs+r] = float64(r + 1)
		b[1*nrhs+r] = float64(2 * (r + 1))
		b[2*nrhs+r] = float64(3 - r)
	}
	x := append([]float64(nil), b...)
	require.NoError(t, klu.Solve(sym, num, 3, nrhs, x))

	for r := 0; r < nrhs; r++ {
		col := make([]float64, 3)
		bcol := make([]float64, 3)
		for i := 0; i < 3; i++ {
			col[i] = x[i*nrhs+r]
			bcol[i] = b[i*nrhs+r]
		}
		require.Less(t, residualInf(dense, col, bcol), 1e-10)
	}
}

func TestFactor_SingularHaltsByDefault(t *testing.T) {
	t.Parallel()

	dense := [][]float64{
		{1, 2},
		{2, 4}, // row 2 = 2 * row 1: structurally and numerically singular
	}
	a := buildCSC(t, dense)
	cfg := klu.DefaultConfig()

	sym, err := klu.Analyze(a, cfg)
	require.NoError(t, err)
	_, err = klu.Factor(a, sym, cfg)
	require.ErrorIs(t, err, klu.ErrSingular)
}

func TestFactor_SingularContinuesWhenConfigured(t *testing.T) {
	t.Parallel()

	dense := [][]float64{
		{1, 2},
		{2, 4},
	}
	a := buildCSC(t, dense)
	cfg := klu.DefaultConfig(klu.WithHaltIfSingular(false))

	sym, err := klu.Analyze(a, cfg)
	require.NoError(t, err)
	num, err := klu.Factor(a, sym, cfg)
	require.NoError(t, err)
	require.Less(t, num.NumericalRank, sym.N)
}

func TestAnalyze_BlockTriangularSplitsIndependentBlocks(t *testing.T) {
	t.Parallel()

	// Block-diagonal: {0,1} and {2} are structurally independent.
	dense := [][]float64{
		{2, 1, 0},
		{1, 2, 0},
		{0, 0, 5},
	}
	a := buildCSC(t, dense)
	sym, err := klu.Analyze(a, klu.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, 2, sym.NBlocks)

	lo, hi := sym.BlockRange(0)
	require.Equal(t, lo, sym.R[0])
	require.Equal(t, hi, sym.R[1])
}

func TestScaling_SumAndMaxProduceValidSolve(t *testing.T) {
	t.Parallel()

	dense := wellConditioned3x3()
	a := buildCSC(t, dense)
	b := []float64{1, 2, 3}

	for _, mode := range []klu.ScaleMode{klu.ScaleSum, klu.ScaleMax} {
		cfg := klu.DefaultConfig(klu.WithScale(mode))
		sym, err := klu.Analyze(a, cfg)
		require.NoError(t, err)
		num, err := klu.Factor(a, sym, cfg)
		require.NoError(t, err)

		x := append([]float64(nil), b...)
		require.NoError(t, klu.Solve(sym, num, 3, 1, x))
		require.Less(t, residualInf(dense, x, b), 1e-10)
	}
}
