package wavelet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Band names one of the four 2D subbands.
type Band string

const (
	BandScaling    Band = "scaling"
	BandHorizontal Band = "horizontal"
	BandVertical   Band = "vertical"
	BandDiagonal   Band = "diagonal"
)

// DetailBands lists the detail subbands in a fixed order.
var DetailBands = []Band{BandHorizontal, BandVertical, BandDiagonal}

// ParseBand maps a band name to a Band.
func ParseBand(s string) (Band, error) {
	switch b := Band(s); b {
	case BandScaling, BandHorizontal, BandVertical, BandDiagonal:
		return b, nil
	}
	return "", fmt.Errorf("band %q: %w", s, ErrInvalidArgument)
}

// Decomposition2D holds the four subbands of one 2D level. All four share the
// same (rows/2) x (cols/2) shape.
type Decomposition2D struct {
	Scaling    [][]float64
	Horizontal [][]float64
	Vertical   [][]float64
	Diagonal   [][]float64
}

// Dims returns the shape shared by the subbands.
func (d Decomposition2D) Dims() (rows, cols int) {
	if len(d.Scaling) == 0 {
		return 0, 0
	}
	return len(d.Scaling), len(d.Scaling[0])
}

// Band returns the named subband, or nil for an unknown name.
func (d Decomposition2D) Band(b Band) [][]float64 {
	switch b {
	case BandScaling:
		return d.Scaling
	case BandHorizontal:
		return d.Horizontal
	case BandVertical:
		return d.Vertical
	case BandDiagonal:
		return d.Diagonal
	}
	return nil
}

// checkSource validates the 2D precondition: a rectangular matrix whose
// dimensions are powers of two and at least 2.
func checkSource(m [][]float64) (rows, cols int, err error) {
	rows, cols, err = dims(m)
	if err != nil {
		return 0, 0, err
	}
	if rows < 2 || cols < 2 || !isPow2(rows) || !isPow2(cols) {
		return 0, 0, fmt.Errorf("matrix %dx%d is not power-of-two sized: %w", rows, cols, ErrInvalidArgument)
	}
	return rows, cols, nil
}

// forwardRows runs Forward1D over every row.
func forwardRows(f Filter, m [][]float64) (scaling, wavelet [][]float64) {
	scaling = make([][]float64, len(m))
	wavelet = make([][]float64, len(m))
	for i, row := range m {
		d := Forward1D(f, row)
		scaling[i] = d.Scaling
		wavelet[i] = d.Wavelet
	}
	return scaling, wavelet
}

// inverseRows runs Inverse1D pairwise over the rows of two same-shaped grids.
func inverseRows(f Filter, scaling, wavelet [][]float64) ([][]float64, error) {
	out := make([][]float64, len(scaling))
	for i := range scaling {
		row, err := Inverse1D(f, scaling[i], wavelet[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

// Forward2D decomposes a power-of-two sized matrix into four subbands by
// transforming rows, transposing, transforming rows again and transposing
// back.
func Forward2D(f Filter, source [][]float64) (Decomposition2D, error) {
	if _, _, err := checkSource(source); err != nil {
		return Decomposition2D{}, fmt.Errorf("forward 2d: %w", err)
	}

	rowLow, rowHigh := forwardRows(f, source)

	ll, lh := forwardRows(f, transpose(rowLow))
	hl, hh := forwardRows(f, transpose(rowHigh))

	return Decomposition2D{
		Scaling:    transpose(ll),
		Horizontal: transpose(lh),
		Vertical:   transpose(hl),
		Diagonal:   transpose(hh),
	}, nil
}

// Inverse2D reconstructs the full-resolution matrix from four subbands.
func Inverse2D(f Filter, d Decomposition2D) ([][]float64, error) {
	if _, _, err := dims(d.Scaling); err != nil {
		return nil, fmt.Errorf("inverse 2d: scaling: %w", err)
	}
	for _, b := range DetailBands {
		if !sameShape(d.Scaling, d.Band(b)) {
			return nil, fmt.Errorf("inverse 2d: %s band shape differs from scaling: %w", b, ErrInvalidArgument)
		}
	}

	top, err := inverseRows(f, transpose(d.Scaling), transpose(d.Horizontal))
	if err != nil {
		return nil, fmt.Errorf("inverse 2d: %w", err)
	}
	bottom, err := inverseRows(f, transpose(d.Vertical), transpose(d.Diagonal))
	if err != nil {
		return nil, fmt.Errorf("inverse 2d: %w", err)
	}

	out, err := inverseRows(f, transpose(top), transpose(bottom))
	if err != nil {
		return nil, fmt.Errorf("inverse 2d: %w", err)
	}
	return out, nil
}

// Transform2D is the lazily evaluated 2D counterpart of Transform1D.
//
// Matrices returned by the getters are owned by the transform and must not be
// modified.
type Transform2D struct {
	filter     Filter
	source     cached[[][]float64]
	scaling    cached[[][]float64]
	horizontal cached[[][]float64]
	vertical   cached[[][]float64]
	diagonal   cached[[][]float64]
	recomposed cached[[][]float64]
}

// NewTransform2D returns an empty transform using the Daubechies filter of the
// given order.
func NewTransform2D(order Order) *Transform2D {
	return &Transform2D{filter: FilterFor(order)}
}

// NewTransform2DWithFilter returns an empty transform using f.
func NewTransform2DWithFilter(f Filter) *Transform2D {
	return &Transform2D{filter: f}
}

// NewTransform2DFrom builds a transform on the inverse path.
func NewTransform2DFrom(order Order, d Decomposition2D) *Transform2D {
	t := NewTransform2D(order)
	t.SetSubbands(d)
	return t
}

func (t *Transform2D) Kind() Kind { return KindDiscrete2D }

// Filter returns the filter in use.
func (t *Transform2D) Filter() Filter { return t.filter }

// SetSource replaces the source and clears everything derived from it.
func (t *Transform2D) SetSource(m [][]float64) {
	t.source.set(cloneGrid(m))
	t.scaling.clear()
	t.horizontal.clear()
	t.vertical.clear()
	t.diagonal.clear()
	t.recomposed.clear()
}

// SetBand replaces one subband and clears the recomposition.
func (t *Transform2D) SetBand(b Band, m [][]float64) error {
	c := t.bandCache(b)
	if c == nil {
		return fmt.Errorf("set band %q: %w", b, ErrInvalidArgument)
	}
	c.set(cloneGrid(m))
	t.recomposed.clear()
	return nil
}

// SetSubbands replaces all four subbands.
func (t *Transform2D) SetSubbands(d Decomposition2D) {
	t.scaling.set(cloneGrid(d.Scaling))
	t.horizontal.set(cloneGrid(d.Horizontal))
	t.vertical.set(cloneGrid(d.Vertical))
	t.diagonal.set(cloneGrid(d.Diagonal))
	t.recomposed.clear()
}

func (t *Transform2D) bandCache(b Band) *cached[[][]float64] {
	switch b {
	case BandScaling:
		return &t.scaling
	case BandHorizontal:
		return &t.horizontal
	case BandVertical:
		return &t.vertical
	case BandDiagonal:
		return &t.diagonal
	}
	return nil
}

// Source returns the source matrix.
func (t *Transform2D) Source() ([][]float64, bool) { return t.source.get() }

// Band returns one subband, computing the decomposition from the source if
// needed.
func (t *Transform2D) Band(b Band) ([][]float64, bool) {
	c := t.bandCache(b)
	if c == nil {
		return nil, false
	}
	t.ensureForward()
	return c.get()
}

func (t *Transform2D) Scaling() ([][]float64, bool)    { return t.Band(BandScaling) }
func (t *Transform2D) Horizontal() ([][]float64, bool) { return t.Band(BandHorizontal) }
func (t *Transform2D) Vertical() ([][]float64, bool)   { return t.Band(BandVertical) }
func (t *Transform2D) Diagonal() ([][]float64, bool)   { return t.Band(BandDiagonal) }

// Subbands returns all four subbands, or ok=false if any is unavailable.
func (t *Transform2D) Subbands() (Decomposition2D, bool) {
	t.ensureForward()
	var d Decomposition2D
	var ok bool
	if d.Scaling, ok = t.scaling.get(); !ok {
		return Decomposition2D{}, false
	}
	if d.Horizontal, ok = t.horizontal.get(); !ok {
		return Decomposition2D{}, false
	}
	if d.Vertical, ok = t.vertical.get(); !ok {
		return Decomposition2D{}, false
	}
	if d.Diagonal, ok = t.diagonal.get(); !ok {
		return Decomposition2D{}, false
	}
	return d, true
}

// Recomposed returns the inverse transform of the current subbands.
func (t *Transform2D) Recomposed() ([][]float64, bool) {
	if r, ok := t.recomposed.get(); ok {
		return r, true
	}
	d, ok := t.Subbands()
	if !ok {
		return nil, false
	}
	r, err := Inverse2D(t.filter, d)
	if err != nil {
		return nil, false
	}
	t.recomposed.set(r)
	return r, true
}

func (t *Transform2D) ensureForward() {
	caches := []*cached[[][]float64]{&t.scaling, &t.horizontal, &t.vertical, &t.diagonal}
	missing := false
	for _, c := range caches {
		if _, ok := c.get(); !ok {
			missing = true
		}
	}
	if !missing {
		return
	}
	src, ok := t.source.get()
	if !ok {
		return
	}
	d, err := Forward2D(t.filter, src)
	if err != nil {
		return
	}
	bands := [][][]float64{d.Scaling, d.Horizontal, d.Vertical, d.Diagonal}
	for i, c := range caches {
		if _, ok := c.get(); !ok {
			c.set(bands[i])
		}
	}
}

// ApplyTo sets data as the source and computes its decomposition. data must
// be a [][]float64 or a gonum mat.Matrix with power-of-two dimensions.
func (t *Transform2D) ApplyTo(data any) (Transform, error) {
	var m [][]float64
	switch v := data.(type) {
	case [][]float64:
		m = v
	case mat.Matrix:
		m = FromDense(v)
	default:
		return nil, fmt.Errorf("apply 2d to %T: %w", data, ErrInvalidArgument)
	}
	if _, _, err := checkSource(m); err != nil {
		return nil, fmt.Errorf("apply 2d: %w", err)
	}
	t.SetSource(m)
	t.ensureForward()
	return t, nil
}

// ComposeFrom returns a new transform with the receiver's filter whose source
// is other's source, or other's recomposition when it has no source.
func (t *Transform2D) ComposeFrom(other Transform) (Transform, error) {
	o, ok := other.(*Transform2D)
	if !ok || o == nil {
		return nil, fmt.Errorf("compose 2d from %v: %w", kindOf(other), ErrInvalidArgument)
	}
	next := NewTransform2DWithFilter(t.filter)
	if src, ok := o.Source(); ok {
		next.SetSource(src)
	} else if r, ok := o.Recomposed(); ok {
		next.SetSource(r)
	}
	return next, nil
}
