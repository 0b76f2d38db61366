package wavelet_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/wavelet"
)

func TestCascade1D_LevelsFinestFirst(t *testing.T) {
	src := makeRandomSignal(64, rand.New(rand.NewSource(5)))
	f := wavelet.FilterFor(wavelet.Order2)

	levels := slices.Collect(wavelet.Cascade1D(f, src, 3))
	require.Len(t, levels, 3)
	for i, lvl := range levels {
		assert.Equal(t, i, lvl.Level)
		assert.Len(t, lvl.Scaling, 32>>i)
		assert.Len(t, lvl.Wavelet, 32>>i)
	}
}

func TestCascade1D_StopsAtFilterLength(t *testing.T) {
	src := makeRandomSignal(16, rand.New(rand.NewSource(5)))
	// 16 -> 8 -> 4; the 4-sample scaling band is shorter than the 8-tap filter.
	levels := slices.Collect(wavelet.Cascade1D(wavelet.FilterFor(wavelet.Order4), src, 10))
	require.Len(t, levels, 2)
}

func TestCascade1D_Restartable(t *testing.T) {
	src := makeRandomSignal(32, rand.New(rand.NewSource(9)))
	seq := wavelet.Cascade1D(wavelet.FilterFor(wavelet.Order2), src, 2)
	src[0] = 1e6 // the sequence owns a copy

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)
}

func TestCascade1D_EarlyBreak(t *testing.T) {
	src := makeRandomSignal(64, rand.New(rand.NewSource(1)))
	n := 0
	for range wavelet.Cascade1D(wavelet.FilterFor(wavelet.Order2), src, 4) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestReconstruct1D_RoundTrip(t *testing.T) {
	src := makeRandomSignal(100, rand.New(rand.NewSource(21)))
	for _, order := range allOrders {
		f := wavelet.FilterFor(order)
		var ds []wavelet.Decomposition1D
		for lvl := range wavelet.Cascade1D(f, src, 3) {
			ds = append(ds, lvl.Decomposition1D)
		}
		rec, err := wavelet.Reconstruct1D(f, ds)
		require.NoError(t, err)
		require.Len(t, rec, len(src))
		assert.Less(t, maxAbsDiff1D(src, rec), epsilon, "order %d", order)
	}
	_, err := wavelet.Reconstruct1D(wavelet.FilterFor(wavelet.Order2), nil)
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
}

func TestCascade2D_Pyramid(t *testing.T) {
	src := makeRandom(64, 64, rand.New(rand.NewSource(2)))
	f := wavelet.FilterFor(wavelet.Order2)

	seq, err := wavelet.Cascade2D(f, src, 3)
	require.NoError(t, err)

	var ds []wavelet.Decomposition2D
	for lvl := range seq {
		rows, cols := lvl.Dims()
		assert.Equal(t, 32>>lvl.Level, rows)
		assert.Equal(t, 32>>lvl.Level, cols)
		ds = append(ds, lvl.Decomposition2D)
	}
	require.Len(t, ds, 3)

	rec, err := wavelet.Reconstruct2D(f, ds)
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(src, rec), epsilon)
}

func TestCascade2D_StopsOnNarrowSide(t *testing.T) {
	src := makeRandom(64, 16, rand.New(rand.NewSource(2)))
	// Order 3 has 6 taps: 64x16 -> 32x8 -> 16x4, and 4 < 6 ends the pyramid.
	seq, err := wavelet.Cascade2D(wavelet.FilterFor(wavelet.Order3), src, 5)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(seq), 2)
}

func TestCascade2D_RejectsBadSource(t *testing.T) {
	_, err := wavelet.Cascade2D(wavelet.FilterFor(wavelet.Order2), constant(12, 12, 1), 2)
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
}
