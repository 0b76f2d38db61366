package wavelet

import (
	"fmt"
	"math/bits"
)

// nextPow2 returns the smallest power of two >= n, and 1 for n <= 1.
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// makeGrid allocates a 2D slice of float64 with the given dimensions.
func makeGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

func cloneGrid(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

func cloneSlice(src []float64) []float64 {
	out := make([]float64, len(src))
	copy(out, src)
	return out
}

// transpose returns a new cols x rows grid.
func transpose(src [][]float64) [][]float64 {
	rows := len(src)
	if rows == 0 {
		return nil
	}
	cols := len(src[0])
	out := makeGrid(cols, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[x][y] = src[y][x]
		}
	}
	return out
}

// dims returns the shape of a rectangular grid, or an error if rows differ in
// length or the grid is empty.
func dims(m [][]float64) (rows, cols int, err error) {
	rows = len(m)
	if rows == 0 || len(m[0]) == 0 {
		return 0, 0, fmt.Errorf("empty matrix: %w", ErrInvalidArgument)
	}
	cols = len(m[0])
	for i, row := range m {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrInvalidArgument)
		}
	}
	return rows, cols, nil
}

// Dims reports the shape of a rectangular matrix. ok is false for empty or
// ragged input.
func Dims(m [][]float64) (rows, cols int, ok bool) {
	r, c, err := dims(m)
	return r, c, err == nil
}

func sameShape(a, b [][]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
	}
	return true
}
