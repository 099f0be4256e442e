package mtxio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	permMagic = "SPKLPERM"
	solvMagic = "SPKLSOLV"

	// StageAnalyzeFactor marks a permutation dump taken after analyze+factor.
	StageAnalyzeFactor uint32 = 1
	// StageSolve marks a permutation dump taken after solve.
	StageSolve uint32 = 2

	dumpVersion uint32 = 1
)

// PermDump is the parity-testing snapshot of a Symbolic+Numeric's
// permutations: "SPKLPERM" magic, version, stage, n, nblocks, then the five
// int32 arrays P, Q, R, Pnum, Pinv, little-endian, per spec §6.
type PermDump struct {
	Stage              uint32
	N, NBlocks         int
	P, Q, R            []int32
	Pnum, Pinv         []int32
}

// WritePermDump serializes d to w in the binary format spec §6 defines.
func WritePermDump(w io.Writer, d PermDump) error {
	if d.Stage != StageAnalyzeFactor && d.Stage != StageSolve {
		return fmt.Errorf("WritePermDump: stage=%d: %w", d.Stage, ErrBadStage)
	}
	if len(d.P) != d.N || len(d.Q) != d.N || len(d.Pnum) != d.N || len(d.Pinv) != d.N {
		return fmt.Errorf("WritePermDump: array length != n=%d", d.N)
	}
	if len(d.R) != d.NBlocks+1 {
		return fmt.Errorf("WritePermDump: len(R)=%d want nblocks+1=%d", len(d.R), d.NBlocks+1)
	}

	if _, err := io.WriteString(w, permMagic); err != nil {
		return fmt.Errorf("WritePermDump: %w: %v", ErrIO, err)
	}
	hdr := []uint32{dumpVersion, d.Stage, uint32(d.N), uint32(d.NBlocks)}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("WritePermDump: %w: %v", ErrIO, err)
		}
	}
	for _, arr := range [][]int32{d.P, d.Q, d.R, d.Pnum, d.Pinv} {
		if err := binary.Write(w, binary.LittleEndian, arr); err != nil {
			return fmt.Errorf("WritePermDump: %w: %v", ErrIO, err)
		}
	}

	return nil
}

// ReadPermDump deserializes a PermDump previously written by
// WritePermDump.
func ReadPermDump(r io.Reader) (PermDump, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return PermDump{}, fmt.Errorf("ReadPermDump: %w: %v", ErrIO, err)
	}
	if string(magic[:]) != permMagic {
		return PermDump{}, fmt.Errorf("ReadPermDump: magic %q: %w", magic, ErrBadMagic)
	}

	var version, stage, n, nblocks uint32
	for _, dst := range []*uint32{&version, &stage, &n, &nblocks} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return PermDump{}, fmt.Errorf("ReadPermDump: %w: %v", ErrIO, err)
		}
	}
	if version != dumpVersion {
		return PermDump{}, fmt.Errorf("ReadPermDump: version=%d: %w", version, ErrBadVersion)
	}
	if stage != StageAnalyzeFactor && stage != StageSolve {
		return PermDump{}, fmt.Errorf("ReadPermDump: stage=%d: %w", stage, ErrBadStage)
	}

	d := PermDump{Stage: stage, N: int(n), NBlocks: int(nblocks)}
	readI32 := func(count int) ([]int32, error) {
		arr := make([]int32, count)
		if err := binary.Read(r, binary.LittleEndian, arr); err != nil {
			return nil, fmt.Errorf("ReadPermDump: %w: %v", ErrIO, err)
		}
		return arr, nil
	}

	var err error
	if d.P, err = readI32(int(n)); err != nil {
		return PermDump{}, err
	}
	if d.Q, err = readI32(int(n)); err != nil {
		return PermDump{}, err
	}
	if d.R, err = readI32(int(nblocks) + 1); err != nil {
		return PermDump{}, err
	}
	if d.Pnum, err = readI32(int(n)); err != nil {
		return PermDump{}, err
	}
	if d.Pinv, err = readI32(int(n)); err != nil {
		return PermDump{}, err
	}

	return d, nil
}

// SolveDump is the parity-testing snapshot of a solve's RHS/solution
// buffer: "SPKLSOLV" magic, version, n, d (vector length), nrhs, len =
// d*nrhs, then len IEEE-754 float64 values (as raw u64 bit patterns),
// little-endian, per spec §6.
type SolveDump struct {
	N, D, NRHS int
	Values     []float64
}

// WriteSolveDump serializes s to w in the binary format spec §6 defines.
func WriteSolveDump(w io.Writer, s SolveDump) error {
	if len(s.Values) != s.D*s.NRHS {
		return fmt.Errorf("WriteSolveDump: len(Values)=%d want d*nrhs=%d", len(s.Values), s.D*s.NRHS)
	}

	if _, err := io.WriteString(w, solvMagic); err != nil {
		return fmt.Errorf("WriteSolveDump: %w: %v", ErrIO, err)
	}
	hdr := []uint32{dumpVersion, uint32(s.N), uint32(s.D), uint32(s.NRHS), uint32(len(s.Values))}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("WriteSolveDump: %w: %v", ErrIO, err)
		}
	}
	for _, v := range s.Values {
		if err := binary.Write(w, binary.LittleEndian, math.Float64bits(v)); err != nil {
			return fmt.Errorf("WriteSolveDump: %w: %v", ErrIO, err)
		}
	}

	return nil
}

// ReadSolveDump deserializes a SolveDump previously written by
// WriteSolveDump.
func ReadSolveDump(r io.Reader) (SolveDump, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return SolveDump{}, fmt.Errorf("ReadSolveDump: %w: %v", ErrIO, err)
	}
	if string(magic[:]) != solvMagic {
		return SolveDump{}, fmt.Errorf("ReadSolveDump: magic %q: %w", magic, ErrBadMagic)
	}

	var version, n, d, nrhs, length uint32
	for _, dst := range []*uint32{&version, &n, &d, &nrhs, &length} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return SolveDump{}, fmt.Errorf("ReadSolveDump: %w: %v", ErrIO, err)
		}
	}
	if version != dumpVersion {
		return SolveDump{}, fmt.Errorf("ReadSolveDump: version=%d: %w", version, ErrBadVersion)
	}
	if length != d*nrhs {
		return SolveDump{}, fmt.Errorf("ReadSolveDump: len=%d want d*nrhs=%d", length, d*nrhs)
	}

	bits := make([]uint64, length)
	if err := binary.Read(r, binary.LittleEndian, bits); err != nil {
		return SolveDump{}, fmt.Errorf("ReadSolveDump: %w: %v", ErrIO, err)
	}
	vals := make([]float64, length)
	for i, b := range bits {
		vals[i] = math.Float64frombits(b)
	}

	return SolveDump{N: int(n), D: int(d), NRHS: int(nrhs), Values: vals}, nil
}
