package wavelet

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Energy returns the sum of squared coefficients of a grid.
func Energy(m [][]float64) float64 {
	e := 0.0
	for _, row := range m {
		e += floats.Dot(row, row)
	}
	return e
}

// Distance returns the L2 distance between two same-shaped grids, or NaN when
// their shapes differ.
func Distance(a, b [][]float64) float64 {
	if !sameShape(a, b) {
		return math.NaN()
	}
	sum := 0.0
	for i := range a {
		d := floats.Distance(a[i], b[i], 2)
		sum += d * d
	}
	return math.Sqrt(sum)
}
