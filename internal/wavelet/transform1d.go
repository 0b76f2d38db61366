package wavelet

import "fmt"

// Decomposition1D is one level of a 1D decomposition. Length is the length of
// the source before zero-padding.
type Decomposition1D struct {
	Scaling []float64
	Wavelet []float64
	Length  int
}

// WorkingLength is the padded source length, always a power of two. An
// empty source pads to 1.
func (d Decomposition1D) WorkingLength() int { return max(2*len(d.Scaling), nextPow2(d.Length)) }

// Padded reports whether the source had to be zero-padded.
func (d Decomposition1D) Padded() bool { return d.Length != d.WorkingLength() }

// Forward1D decomposes source with circular convolution and downsampling by 2.
// The source is zero-padded to the next power of two; an empty source pads to
// length 1 and yields empty halves.
func Forward1D(f Filter, source []float64) Decomposition1D {
	n := nextPow2(len(source))
	buf := make([]float64, n)
	copy(buf, source)

	half := n / 2
	scaling := make([]float64, half)
	wavelet := make([]float64, half)
	for b := 0; b < half; b++ {
		var s, w float64
		for i := range f.h {
			v := buf[(i+2*b)%n]
			s += f.h[i] * v
			w += f.g[i] * v
		}
		scaling[b] = s
		wavelet[b] = w
	}
	return Decomposition1D{Scaling: scaling, Wavelet: wavelet, Length: len(source)}
}

// Inverse1D reconstructs a sequence of length 2*len(scaling) from its scaling
// and wavelet halves. The result is not truncated; callers holding the
// original length truncate it themselves.
func Inverse1D(f Filter, scaling, wavelet []float64) ([]float64, error) {
	m := len(scaling)
	if len(wavelet) != m {
		return nil, fmt.Errorf("inverse 1d: scaling has %d coefficients, wavelet %d: %w", m, len(wavelet), ErrInvalidArgument)
	}
	out := make([]float64, 2*m)
	taps := len(f.h) / 2
	for b := 0; b < m; b++ {
		k := 2 * b
		for j := 0; j < taps; j++ {
			n := (b - j) % m
			if n < 0 {
				n += m
			}
			out[k] += f.h[2*j]*scaling[n] + f.g[2*j]*wavelet[n]
			out[k+1] += f.h[2*j+1]*scaling[n] + f.g[2*j+1]*wavelet[n]
		}
	}
	return out, nil
}

// Transform1D is a lazily evaluated 1D transform. It is built either from a
// source signal (scaling and wavelet computed on first read) or from scaling
// and wavelet values (recomposition computed on first read). Setters clear
// derived values without recomputing them.
//
// Slices returned by the getters are owned by the transform and must not be
// modified.
type Transform1D struct {
	filter     Filter
	source     cached[[]float64]
	length     int
	scaling    cached[[]float64]
	wavelet    cached[[]float64]
	recomposed cached[[]float64]
}

// NewTransform1D returns an empty transform using the Daubechies filter of the
// given order.
func NewTransform1D(order Order) *Transform1D {
	return &Transform1D{filter: FilterFor(order)}
}

// NewTransform1DWithFilter returns an empty transform using f.
func NewTransform1DWithFilter(f Filter) *Transform1D {
	return &Transform1D{filter: f}
}

// NewTransform1DFrom builds a transform on the inverse path.
func NewTransform1DFrom(order Order, scaling, wavelet []float64) *Transform1D {
	t := NewTransform1D(order)
	t.SetScaling(scaling)
	t.SetWavelet(wavelet)
	return t
}

func (t *Transform1D) Kind() Kind { return KindDiscrete1D }

// Filter returns the filter in use.
func (t *Transform1D) Filter() Filter { return t.filter }

// SetSource replaces the source and clears everything derived from it.
func (t *Transform1D) SetSource(src []float64) {
	t.source.set(cloneSlice(src))
	t.length = len(src)
	t.scaling.clear()
	t.wavelet.clear()
	t.recomposed.clear()
}

// SetScaling replaces the scaling coefficients and clears the recomposition.
func (t *Transform1D) SetScaling(s []float64) {
	t.scaling.set(cloneSlice(s))
	t.recomposed.clear()
}

// SetWavelet replaces the wavelet coefficients and clears the recomposition.
func (t *Transform1D) SetWavelet(w []float64) {
	t.wavelet.set(cloneSlice(w))
	t.recomposed.clear()
}

// Source returns the source signal, unpadded.
func (t *Transform1D) Source() ([]float64, bool) { return t.source.get() }

// Scaling returns the scaling coefficients, computing them from the source if
// needed. ok is false when neither is available.
func (t *Transform1D) Scaling() ([]float64, bool) {
	t.ensureForward()
	return t.scaling.get()
}

// Wavelet returns the wavelet coefficients, computing them from the source if
// needed. ok is false when neither is available.
func (t *Transform1D) Wavelet() ([]float64, bool) {
	t.ensureForward()
	return t.wavelet.get()
}

// Decomposition returns both halves at once.
func (t *Transform1D) Decomposition() (Decomposition1D, bool) {
	s, ok := t.Scaling()
	if !ok {
		return Decomposition1D{}, false
	}
	w, ok := t.Wavelet()
	if !ok {
		return Decomposition1D{}, false
	}
	length := t.length
	if _, ok := t.source.get(); !ok {
		length = 2 * len(s)
	}
	return Decomposition1D{Scaling: s, Wavelet: w, Length: length}, true
}

// Recomposed returns the inverse transform of the current scaling and wavelet
// coefficients, truncated to the source length when the source was padded.
// ok is false when the coefficients are unavailable or mismatched.
func (t *Transform1D) Recomposed() ([]float64, bool) {
	if r, ok := t.recomposed.get(); ok {
		return r, true
	}
	s, ok := t.Scaling()
	if !ok {
		return nil, false
	}
	w, ok := t.Wavelet()
	if !ok {
		return nil, false
	}
	r, err := Inverse1D(t.filter, s, w)
	if err != nil {
		return nil, false
	}
	if _, ok := t.source.get(); ok && t.length < len(r) {
		r = r[:t.length]
	}
	t.recomposed.set(r)
	return r, true
}

func (t *Transform1D) ensureForward() {
	_, sok := t.scaling.get()
	_, wok := t.wavelet.get()
	if sok && wok {
		return
	}
	src, ok := t.source.get()
	if !ok {
		return
	}
	d := Forward1D(t.filter, src)
	if !sok {
		t.scaling.set(d.Scaling)
	}
	if !wok {
		t.wavelet.set(d.Wavelet)
	}
}

// ApplyTo sets data as the source and computes its decomposition. data must
// be a []float64, []float32 or []int.
func (t *Transform1D) ApplyTo(data any) (Transform, error) {
	src, err := toSignal(data)
	if err != nil {
		return nil, err
	}
	t.SetSource(src)
	t.ensureForward()
	return t, nil
}

// ComposeFrom returns a new transform with the receiver's filter whose source
// is other's source, or other's recomposition when it has no source.
func (t *Transform1D) ComposeFrom(other Transform) (Transform, error) {
	o, ok := other.(*Transform1D)
	if !ok || o == nil {
		return nil, fmt.Errorf("compose 1d from %v: %w", kindOf(other), ErrInvalidArgument)
	}
	next := NewTransform1DWithFilter(t.filter)
	if src, ok := o.Source(); ok {
		next.SetSource(src)
	} else if r, ok := o.Recomposed(); ok {
		next.SetSource(r)
	}
	return next, nil
}

func toSignal(data any) ([]float64, error) {
	switch v := data.(type) {
	case []float64:
		return v, nil
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("apply 1d to %T: %w", data, ErrInvalidArgument)
	}
}

func kindOf(t Transform) string {
	if t == nil {
		return "<nil>"
	}
	return t.Kind().String()
}
