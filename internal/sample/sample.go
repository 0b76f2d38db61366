// Package sample provides canned signals for demos and tests.
package sample

import "fmt"

// Ramp returns 0, 1, ..., n-1.
func Ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// Step returns a ramp over the first half followed by a flat top at the
// ramp's peak value, so the signal has both a smooth slope and a corner.
func Step(n int) []float64 {
	out := make([]float64, n)
	half := n / 2
	for i := range out {
		if i < half {
			out[i] = float64(i)
		} else {
			out[i] = float64(half)
		}
	}
	return out
}

// BorderedSquare returns an n x n image (values 0 or 255) with a one-pixel
// border, a centred filled square and both diagonals.
func BorderedSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for y := range m {
		m[y] = make([]float64, n)
	}
	lo, hi := n/4, n-n/4
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			border := x == 0 || y == 0 || x == n-1 || y == n-1
			diagonal := x == y || x == n-1-y
			square := x >= lo && x < hi && y >= lo && y < hi
			if border || diagonal || square {
				m[y][x] = 255
			}
		}
	}
	return m
}

// Signal1D returns a named 1D sample.
func Signal1D(name string, n int) ([]float64, error) {
	switch name {
	case "ramp":
		return Ramp(n), nil
	case "step":
		return Step(n), nil
	}
	return nil, fmt.Errorf("unknown 1d sample %q", name)
}

// Signal2D returns a named 2D sample.
func Signal2D(name string, n int) ([][]float64, error) {
	switch name {
	case "square":
		return BorderedSquare(n), nil
	}
	return nil, fmt.Errorf("unknown 2d sample %q", name)
}
