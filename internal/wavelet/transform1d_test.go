package wavelet_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/wavelet"
)

func TestForward1D_KnownRamp(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	f := wavelet.FilterFor(wavelet.Order4)

	d := wavelet.Forward1D(f, src)
	require.Len(t, d.Scaling, 4)
	require.Len(t, d.Wavelet, 4)
	assert.False(t, d.Padded())

	rec, err := wavelet.Inverse1D(f, d.Scaling, d.Wavelet)
	require.NoError(t, err)
	require.Len(t, rec, 8)
	if diff := maxAbsDiff1D(src, rec); diff > epsilon {
		t.Errorf("round-trip max diff = %e, want < %e", diff, epsilon)
	}
}

func TestRoundTrip1D(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	// 4096 exercises circular indexing with more than 1024 coefficients per half.
	for _, n := range []int{8, 16, 64, 256, 2048, 4096} {
		src := makeRandomSignal(n, rng)
		for _, order := range allOrders {
			f := wavelet.FilterFor(order)
			d := wavelet.Forward1D(f, src)
			rec, err := wavelet.Inverse1D(f, d.Scaling, d.Wavelet)
			require.NoError(t, err)
			if diff := maxAbsDiff1D(src, rec); diff > epsilon {
				t.Errorf("n=%d order=%d round-trip max diff = %e", n, order, diff)
			}
		}
	}
}

func TestForward1D_ConstantHasNoDetail(t *testing.T) {
	src := make([]float64, 64)
	for i := range src {
		src[i] = 1
	}
	for _, order := range allOrders {
		f := wavelet.FilterFor(order)
		d := wavelet.Forward1D(f, src)
		for i, w := range d.Wavelet {
			require.InDelta(t, 0.0, w, epsilon, "order %d wavelet[%d]", order, i)
		}
		for i, s := range d.Scaling {
			require.InDelta(t, f.DCGain(), s, epsilon, "order %d scaling[%d]", order, i)
		}
	}
}

func TestForward1D_PadsToPowerOfTwo(t *testing.T) {
	src := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	f := wavelet.FilterFor(wavelet.Order2)
	d := wavelet.Forward1D(f, src)

	assert.Equal(t, 16, d.WorkingLength())
	assert.Len(t, d.Scaling, 8)
	assert.Len(t, d.Wavelet, 8)
	assert.True(t, d.Padded())
	assert.Equal(t, len(src), d.Length)
}

func TestForward1D_Empty(t *testing.T) {
	d := wavelet.Forward1D(wavelet.FilterFor(wavelet.Order2), nil)
	assert.Empty(t, d.Scaling)
	assert.Empty(t, d.Wavelet)
	assert.Equal(t, 0, d.Length)
	assert.Equal(t, 1, d.WorkingLength())
	assert.True(t, d.Padded())

	d = wavelet.Forward1D(wavelet.FilterFor(wavelet.Order2), []float64{7, 7})
	assert.Equal(t, 2, d.WorkingLength())
	assert.False(t, d.Padded())
}

func TestInverse1D_LengthMismatch(t *testing.T) {
	_, err := wavelet.Inverse1D(wavelet.FilterFor(wavelet.Order2), make([]float64, 4), make([]float64, 3))
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
}

func TestTransform1D_LazyAbsence(t *testing.T) {
	tr := wavelet.NewTransform1D(wavelet.Order2)

	_, ok := tr.Source()
	assert.False(t, ok)
	_, ok = tr.Scaling()
	assert.False(t, ok)
	_, ok = tr.Wavelet()
	assert.False(t, ok)
	_, ok = tr.Recomposed()
	assert.False(t, ok)
}

func TestTransform1D_ApplyToTruncatesRecomposition(t *testing.T) {
	src := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	tr := wavelet.NewTransform1D(wavelet.Order3)

	got, err := tr.ApplyTo(src)
	require.NoError(t, err)
	require.Same(t, tr, got)

	s, ok := tr.Scaling()
	require.True(t, ok)
	assert.Len(t, s, 8)

	rec, ok := tr.Recomposed()
	require.True(t, ok)
	require.Len(t, rec, len(src))
	if diff := maxAbsDiff1D(src, rec); diff > epsilon {
		t.Errorf("padded round-trip max diff = %e", diff)
	}
}

func TestTransform1D_ApplyToAcceptsIntsAndFloat32(t *testing.T) {
	for _, data := range []any{[]int{1, 2, 3, 4}, []float32{1, 2, 3, 4}} {
		tr := wavelet.NewTransform1D(wavelet.Order2)
		_, err := tr.ApplyTo(data)
		require.NoError(t, err)
		src, ok := tr.Source()
		require.True(t, ok)
		assert.Equal(t, []float64{1, 2, 3, 4}, src)
	}
}

func TestTransform1D_ApplyToRejectsNonSequence(t *testing.T) {
	tr := wavelet.NewTransform1D(wavelet.Order2)
	for _, data := range []any{"abc", 3.0, [][]float64{{1, 2}}, nil} {
		_, err := tr.ApplyTo(data)
		require.ErrorIs(t, err, wavelet.ErrInvalidArgument, "%T", data)
	}
}

func TestTransform1D_SetSourceInvalidates(t *testing.T) {
	tr := wavelet.NewTransform1D(wavelet.Order2)
	_, err := tr.ApplyTo([]float64{1, 1, 1, 1, 1, 1, 1, 1})
	require.NoError(t, err)
	w, _ := tr.Wavelet()
	assert.InDelta(t, 0.0, w[0], epsilon)

	tr.SetSource([]float64{0, 8, 0, 8, 0, 8, 0, 8})
	w, ok := tr.Wavelet()
	require.True(t, ok)
	assert.Greater(t, wavelet.Energy([][]float64{w}), 1.0)

	rec, ok := tr.Recomposed()
	require.True(t, ok)
	assert.InDelta(t, 8.0, rec[1], epsilon)
}

func TestTransform1D_SetWaveletClearsRecomposition(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	tr := wavelet.NewTransform1D(wavelet.Order2)
	_, err := tr.ApplyTo(src)
	require.NoError(t, err)
	before, _ := tr.Recomposed()
	before = append([]float64(nil), before...)

	tr.SetWavelet(make([]float64, 4))
	after, ok := tr.Recomposed()
	require.True(t, ok)
	assert.Greater(t, maxAbsDiff1D(before, after), 1e-3)

	// The source is untouched and scaling is kept.
	s, _ := tr.Source()
	assert.Equal(t, src, s)
}

func TestTransform1D_InversePath(t *testing.T) {
	f := wavelet.FilterFor(wavelet.Order2)
	src := []float64{4, 8, 15, 16, 23, 42, 7, 1}
	d := wavelet.Forward1D(f, src)

	tr := wavelet.NewTransform1DFrom(wavelet.Order2, d.Scaling, d.Wavelet)
	_, ok := tr.Source()
	assert.False(t, ok)
	rec, ok := tr.Recomposed()
	require.True(t, ok)
	assert.Less(t, maxAbsDiff1D(src, rec), epsilon)
}

func TestTransform1D_ComposeFrom(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	first := wavelet.NewTransform1D(wavelet.Order2)
	_, err := first.ApplyTo(src)
	require.NoError(t, err)

	next, err := wavelet.NewTransform1D(wavelet.Order4).ComposeFrom(first)
	require.NoError(t, err)
	n := next.(*wavelet.Transform1D)
	got, ok := n.Source()
	require.True(t, ok)
	assert.Equal(t, src, got)
	assert.Equal(t, 8, n.Filter().Len())

	// Without a source the recomposition is used.
	d := wavelet.Forward1D(wavelet.FilterFor(wavelet.Order2), src)
	inv := wavelet.NewTransform1DFrom(wavelet.Order2, d.Scaling, d.Wavelet)
	next, err = wavelet.NewTransform1D(wavelet.Order2).ComposeFrom(inv)
	require.NoError(t, err)
	got, ok = next.(*wavelet.Transform1D).Source()
	require.True(t, ok)
	assert.Less(t, maxAbsDiff1D(src, got), epsilon)
}

func TestTransform1D_ComposeFromWrongVariant(t *testing.T) {
	tr := wavelet.NewTransform1D(wavelet.Order2)
	for _, other := range []wavelet.Transform{wavelet.NewTransform2D(wavelet.Order2), wavelet.Continuous{}, nil} {
		_, err := tr.ComposeFrom(other)
		require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
	}
}

func TestNew_Variants(t *testing.T) {
	for _, kind := range []wavelet.Kind{wavelet.KindContinuous, wavelet.KindDiscrete1D, wavelet.KindDiscrete2D} {
		tr, err := wavelet.New(kind, wavelet.Order2)
		require.NoError(t, err)
		assert.Equal(t, kind, tr.Kind())
	}
	_, err := wavelet.New(wavelet.Kind(9), wavelet.Order2)
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
}

func TestContinuous_Unsupported(t *testing.T) {
	_, err := wavelet.Continuous{}.ApplyTo([]float64{1, 2})
	require.ErrorIs(t, err, wavelet.ErrUnsupported)
	_, err = wavelet.Continuous{}.ComposeFrom(wavelet.Continuous{})
	require.ErrorIs(t, err, wavelet.ErrUnsupported)
}
