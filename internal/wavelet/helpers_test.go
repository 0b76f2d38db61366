package wavelet_test

import (
	"math"
	"math/rand"

	"github.com/YannKr/wavescope/internal/wavelet"
)

var allOrders = []wavelet.Order{wavelet.Order2, wavelet.Order3, wavelet.Order4}

const epsilon = 1e-9

func makeRandom(h, w int, rng *rand.Rand) [][]float64 {
	src := make([][]float64, h)
	for y := 0; y < h; y++ {
		src[y] = make([]float64, w)
		for x := 0; x < w; x++ {
			src[y][x] = rng.Float64()*512.0 - 256.0
		}
	}
	return src
}

func makeRandomSignal(n int, rng *rand.Rand) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*512.0 - 256.0
	}
	return out
}

func maxAbsDiff(a, b [][]float64) float64 {
	max := 0.0
	for y := range a {
		for x := range a[y] {
			d := math.Abs(a[y][x] - b[y][x])
			if d > max {
				max = d
			}
		}
	}
	return max
}

func maxAbsDiff1D(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if d > max {
			max = d
		}
	}
	return max
}

func constant(h, w int, c float64) [][]float64 {
	m := make([][]float64, h)
	for y := range m {
		m[y] = make([]float64, w)
		for x := range m[y] {
			m[y][x] = c
		}
	}
	return m
}
