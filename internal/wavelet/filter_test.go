package wavelet_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/wavelet"
)

func TestFilterFor_TapCounts(t *testing.T) {
	for _, order := range allOrders {
		f := wavelet.FilterFor(order)
		assert.Equal(t, 2*int(order), f.Len(), "order %d", order)
		assert.Equal(t, order, f.Order())
	}
}

func TestFilterFor_UnknownOrderFallsBackToOrder2(t *testing.T) {
	want := wavelet.FilterFor(wavelet.Order2).Scaling()
	for _, order := range []wavelet.Order{0, 1, 5, 42, -3} {
		require.Equal(t, want, wavelet.FilterFor(order).Scaling(), "order %d", order)
	}
}

func TestFilter_QuadratureMirror(t *testing.T) {
	for _, order := range allOrders {
		f := wavelet.FilterFor(order)
		h, g := f.Scaling(), f.Wavelet()
		l := len(h)
		for k := 0; k < l; k++ {
			want := h[l-1-k]
			if k%2 == 1 {
				want = -want
			}
			require.Equal(t, want, g[k], "order %d tap %d", order, k)
		}
	}
}

func TestFilter_Orthonormal(t *testing.T) {
	for _, order := range allOrders {
		f := wavelet.FilterFor(order)
		h, g := f.Scaling(), f.Wavelet()

		sumSq, alt, gSum := 0.0, 0.0, 0.0
		for k, v := range h {
			sumSq += v * v
			if k%2 == 0 {
				alt += v
			} else {
				alt -= v
			}
			gSum += g[k]
		}
		assert.InDelta(t, math.Sqrt2, f.DCGain(), 1e-12, "order %d", order)
		assert.InDelta(t, 1.0, sumSq, 1e-12, "order %d", order)
		assert.InDelta(t, 0.0, alt, 1e-12, "order %d", order)
		assert.InDelta(t, 0.0, gSum, 1e-12, "order %d", order)
	}
}

func TestFilter_AccessorsReturnCopies(t *testing.T) {
	f := wavelet.FilterFor(wavelet.Order2)
	h := f.Scaling()
	h[0] = 100
	assert.NotEqual(t, 100.0, f.Scaling()[0])
}
