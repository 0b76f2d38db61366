package wavelet

import "math"

// Order is the Daubechies order (number of vanishing moments). The filter
// length is 2*Order.
type Order int

const (
	Order2 Order = 2
	Order3 Order = 3
	Order4 Order = 4
)

var (
	sqrt2 = math.Sqrt(2)
	sqrt3 = math.Sqrt(3)

	daubechies4 = []float64{
		(1 + sqrt3) / (4 * sqrt2),
		(3 + sqrt3) / (4 * sqrt2),
		(3 - sqrt3) / (4 * sqrt2),
		(1 - sqrt3) / (4 * sqrt2),
	}

	daubechies6 = []float64{
		0.33267055295008261599851158914,
		0.80689150931109257649449360409,
		0.45987750211849157009515194215,
		-0.13501102001025458869638990670,
		-0.08544127388202666169281916918,
		0.03522629188570953660274066472,
	}

	daubechies8 = []float64{
		0.23037781330889650086329118304,
		0.71484657055291564708992195527,
		0.63088076792985890788171633830,
		-0.02798376941685985421141374718,
		-0.18703481171909308407957067279,
		0.03084138183556076362721936253,
		0.03288301166688519973540751355,
		-0.01059740178506903210488320852,
	}
)

// Filter is an immutable pair of scaling (h) and wavelet (g) taps.
type Filter struct {
	h []float64
	g []float64
}

// FilterFor returns the Daubechies filter of the given order. Orders other
// than 3 and 4 fall back to order 2.
func FilterFor(order Order) Filter {
	switch order {
	case Order3:
		return NewFilter(daubechies6)
	case Order4:
		return NewFilter(daubechies8)
	default:
		return NewFilter(daubechies4)
	}
}

// NewFilter derives the wavelet taps from the scaling taps through the
// quadrature mirror relation g[k] = (-1)^k * h[L-1-k].
func NewFilter(scaling []float64) Filter {
	l := len(scaling)
	h := make([]float64, l)
	copy(h, scaling)
	g := make([]float64, l)
	for k := 0; k < l; k++ {
		v := h[l-1-k]
		if k%2 == 1 {
			v = -v
		}
		g[k] = v
	}
	return Filter{h: h, g: g}
}

// Len returns the number of taps.
func (f Filter) Len() int { return len(f.h) }

// Order returns the Daubechies order, i.e. half the tap count.
func (f Filter) Order() Order { return Order(len(f.h) / 2) }

// Scaling returns a copy of the scaling (low-pass) taps.
func (f Filter) Scaling() []float64 {
	out := make([]float64, len(f.h))
	copy(out, f.h)
	return out
}

// Wavelet returns a copy of the wavelet (high-pass) taps.
func (f Filter) Wavelet() []float64 {
	out := make([]float64, len(f.g))
	copy(out, f.g)
	return out
}

// DCGain is the sum of the scaling taps, the factor a constant signal is
// multiplied by in the scaling band of one 1D level.
func (f Filter) DCGain() float64 {
	sum := 0.0
	for _, v := range f.h {
		sum += v
	}
	return sum
}
