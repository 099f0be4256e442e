package mtxio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nodalspice/spicekit/sparse"
)

// LoadOptions controls MatrixMarket ingestion policy.
type LoadOptions struct {
	// KeepExplicitZeros preserves entries whose value is exactly 0 rather
	// than stripping them. The SuiteSparse KLU demo .mtx fixtures need this
	// to reproduce their published nnz counts.
	KeepExplicitZeros bool
}

// LoadMatrixMarket reads a MatrixMarket coordinate-format matrix (object
// "matrix", format "coordinate", field "real" or "integer", symmetry
// "general") from r and returns it as a CSC. Tolerates a leading UTF-8 BOM
// and "%"-prefixed comment lines. Entries are 1-based in the file and
// converted to 0-based on load.
// Complexity: O(nnz log nnz) (delegates compaction to sparse.MatrixBuilder).
func LoadMatrixMarket(r io.Reader, opts LoadOptions) (*sparse.CSC, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	banner, ok := nextNonCommentLine(sc, true)
	if !ok {
		return nil, fmt.Errorf("LoadMatrixMarket: empty input: %w", ErrBadBanner)
	}
	if err := checkBanner(banner); err != nil {
		return nil, err
	}

	sizeLine, ok := nextNonCommentLine(sc, false)
	if !ok {
		return nil, fmt.Errorf("LoadMatrixMarket: missing size line: %w", ErrBadSizeLine)
	}
	nrows, ncols, nnz, err := parseSizeLine(sizeLine)
	if err != nil {
		return nil, err
	}
	if nrows != ncols {
		return nil, fmt.Errorf("LoadMatrixMarket: %dx%d is not square: %w", nrows, ncols, ErrUnsupportedType)
	}

	b, err := sparse.NewMatrixBuilder(nrows, ncols)
	if err != nil {
		return nil, fmt.Errorf("LoadMatrixMarket: %w", err)
	}

	for i := 0; i < nnz; i++ {
		line, ok := nextNonCommentLine(sc, false)
		if !ok {
			return nil, fmt.Errorf("LoadMatrixMarket: entry %d/%d missing: %w", i+1, nnz, ErrBadEntry)
		}
		row, col, val, err := parseEntryLine(line)
		if err != nil {
			return nil, err
		}
		if val == 0 && !opts.KeepExplicitZeros {
			continue
		}
		if _, err := b.Push(col, row, val); err != nil {
			return nil, fmt.Errorf("LoadMatrixMarket: entry %d: %w", i+1, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("LoadMatrixMarket: %w: %v", ErrIO, err)
	}

	a, err := b.BuildCSC()
	if err != nil {
		return nil, fmt.Errorf("LoadMatrixMarket: %w", err)
	}

	return a, nil
}

// nextNonCommentLine returns the next line that is neither empty nor a "%"
// comment, stripping a UTF-8 BOM from the very first line when stripBOM is
// true. The stripBOM call reads the banner, so it returns a "%%" line
// instead of skipping it as a comment.
func nextNonCommentLine(sc *bufio.Scanner, stripBOM bool) (string, bool) {
	banner := stripBOM
	for sc.Scan() {
		line := sc.Text()
		if stripBOM {
			line = strings.TrimPrefix(line, string(rune(0xFEFF)))
			stripBOM = false
		}
		line = strings.TrimSpace(line)
		if banner && strings.HasPrefix(line, "%%") {
			return line, true
		}
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}

		return line, true
	}

	return "", false
}

// checkBanner validates the MatrixMarket banner line against the subset
// this loader supports: coordinate, general, real|integer.
func checkBanner(line string) error {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) < 5 || fields[0] != "%%matrixmarket" {
		return fmt.Errorf("LoadMatrixMarket: banner %q: %w", line, ErrBadBanner)
	}
	if fields[1] != "matrix" {
		return fmt.Errorf("LoadMatrixMarket: object %q: %w", fields[1], ErrUnsupportedType)
	}
	if fields[2] != "coordinate" {
		return fmt.Errorf("LoadMatrixMarket: format %q: %w", fields[2], ErrUnsupportedType)
	}
	if fields[3] != "real" && fields[3] != "integer" {
		return fmt.Errorf("LoadMatrixMarket: field %q: %w", fields[3], ErrUnsupportedType)
	}
	if fields[4] != "general" {
		return fmt.Errorf("LoadMatrixMarket: symmetry %q: %w", fields[4], ErrUnsupportedType)
	}

	return nil
}

func parseSizeLine(line string) (rows, cols, nnz int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("LoadMatrixMarket: %q: %w", line, ErrBadSizeLine)
	}
	rows, err1 := strconv.Atoi(fields[0])
	cols, err2 := strconv.Atoi(fields[1])
	nnz, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil || rows <= 0 || cols <= 0 || nnz < 0 {
		return 0, 0, 0, fmt.Errorf("LoadMatrixMarket: %q: %w", line, ErrBadSizeLine)
	}

	return rows, cols, nnz, nil
}

func parseEntryLine(line string) (row, col int, val float64, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, 0, 0, fmt.Errorf("LoadMatrixMarket: %q: %w", line, ErrBadEntry)
	}
	row1, err1 := strconv.Atoi(fields[0])
	col1, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil {
		return 0, 0, 0, fmt.Errorf("LoadMatrixMarket: %q: %w", line, ErrBadEntry)
	}
	val = 1 // pattern-only coordinate files (rare) default to 1
	if len(fields) >= 3 {
		v, err3 := strconv.ParseFloat(fields[2], 64)
		if err3 != nil {
			return 0, 0, 0, fmt.Errorf("LoadMatrixMarket: %q: %w", line, ErrBadEntry)
		}
		val = v
	}

	return row1 - 1, col1 - 1, val, nil
}
