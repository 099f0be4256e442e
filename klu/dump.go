package klu

import (
	"io"

	"github.com/nodalspice/spicekit/mtxio"
)

// toInt32 converts an int slice for binary serialization.
func toInt32(s []int) []int32 {
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = int32(v)
	}

	return out
}

func fromInt32(s []int32) []int {
	out := make([]int, len(s))
	for i, v := range s {
		out[i] = int(v)
	}

	return out
}

// WritePermDump snapshots sym and num's permutations in the binary parity
// format (spec §6), stamped with the given stage (mtxio.StageAnalyzeFactor
// or mtxio.StageSolve).
func WritePermDump(w io.Writer, sym *Symbolic, num *Numeric, stage uint32) error {
	return mtxio.WritePermDump(w, mtxio.PermDump{
		Stage:   stage,
		N:       sym.N,
		NBlocks: sym.NBlocks,
		P:       toInt32(sym.P),
		Q:       toInt32(sym.Q),
		R:       toInt32(sym.R),
		Pnum:    toInt32(num.Pnum),
		Pinv:    toInt32(num.Pinv),
	})
}

// ReadPermDump reads back a permutation dump written by WritePermDump,
// returning its raw fields for comparison against a freshly computed
// Symbolic/Numeric pair.
func ReadPermDump(r io.Reader) (stage uint32, p, q, rr, pnum, pinv []int, err error) {
	d, err := mtxio.ReadPermDump(r)
	if err != nil {
		return 0, nil, nil, nil, nil, nil, err
	}

	return d.Stage, fromInt32(d.P), fromInt32(d.Q), fromInt32(d.R), fromInt32(d.Pnum), fromInt32(d.Pinv), nil
}

// WriteSolveDump snapshots a solved RHS buffer in the binary parity format
// (spec §6).
func WriteSolveDump(w io.Writer, n, d, nrhs int, values []float64) error {
	return mtxio.WriteSolveDump(w, mtxio.SolveDump{N: n, D: d, NRHS: nrhs, Values: values})
}

// ReadSolveDump reads back a solve dump written by WriteSolveDump.
func ReadSolveDump(r io.Reader) (d, nrhs int, values []float64, err error) {
	s, err := mtxio.ReadSolveDump(r)
	if err != nil {
		return 0, 0, nil, err
	}

	return s.D, s.NRHS, s.Values, nil
}
