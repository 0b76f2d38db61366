package wavelet

import "image"

// MaskState summarises how much of an overlay has been restored.
type MaskState int

const (
	MaskCleared MaskState = iota
	MaskPartial
	MaskFull
)

func (s MaskState) String() string {
	switch s {
	case MaskCleared:
		return "cleared"
	case MaskPartial:
		return "partial"
	case MaskFull:
		return "full"
	}
	return "unknown"
}

// Radius heuristic for 2D masks: small windows for ordinary images, wider
// ones once a subband reaches the high-resolution tier.
const (
	DefaultMaskRadius = 2
	WideMaskRadius    = 10
	wideMaskThreshold = 1023
)

// DefaultRadius picks the edit radius for a subband of the given shape.
func DefaultRadius(rows, cols int) int {
	if rows >= wideMaskThreshold || cols >= wideMaskThreshold {
		return WideMaskRadius
	}
	return DefaultMaskRadius
}

func stateOf(restored, total int) MaskState {
	switch {
	case restored == 0:
		return MaskCleared
	case restored == total:
		return MaskFull
	default:
		return MaskPartial
	}
}

// Mask1D is an editable copy of one wavelet band. Every cell is either
// restored (equal to the canonical value) or suppressed (zero). A new mask is
// fully suppressed.
type Mask1D struct {
	canonical []float64
	overlay   []float64
	restored  []bool
	count     int
}

// NewMask1D returns a cleared mask over detail.
func NewMask1D(detail []float64) *Mask1D {
	return &Mask1D{
		canonical: cloneSlice(detail),
		overlay:   make([]float64, len(detail)),
		restored:  make([]bool, len(detail)),
	}
}

// Len returns the number of coefficients.
func (m *Mask1D) Len() int { return len(m.canonical) }

// Overlay returns the edited coefficients. The slice is owned by the mask.
func (m *Mask1D) Overlay() []float64 { return m.overlay }

// State reports whether the overlay is cleared, partially or fully restored.
func (m *Mask1D) State() MaskState { return stateOf(m.count, len(m.canonical)) }

func (m *Mask1D) setCell(i int, restore bool) {
	if m.restored[i] == restore {
		return
	}
	m.restored[i] = restore
	if restore {
		m.overlay[i] = m.canonical[i]
		m.count++
	} else {
		m.overlay[i] = 0
		m.count--
	}
}

// MaskAt restores or suppresses the cells in [idx-radius, idx+radius],
// clamped to the band. It reports whether any cell was inside the band.
func (m *Mask1D) MaskAt(idx, radius int, restore bool) bool {
	lo := max(idx-radius, 0)
	hi := min(idx+radius, len(m.canonical)-1)
	if lo > hi {
		return false
	}
	for i := lo; i <= hi; i++ {
		m.setCell(i, restore)
	}
	return true
}

// RestoreAll copies every canonical coefficient into the overlay.
func (m *Mask1D) RestoreAll() {
	for i := range m.canonical {
		m.setCell(i, true)
	}
}

// ClearAll suppresses every coefficient.
func (m *Mask1D) ClearAll() {
	for i := range m.canonical {
		m.setCell(i, false)
	}
}

type maskPlane struct {
	canonical [][]float64
	overlay   [][]float64
	restored  [][]bool
	count     int
}

func newMaskPlane(detail [][]float64) *maskPlane {
	p := &maskPlane{
		canonical: cloneGrid(detail),
		overlay:   make([][]float64, len(detail)),
		restored:  make([][]bool, len(detail)),
	}
	for y, row := range detail {
		p.overlay[y] = make([]float64, len(row))
		p.restored[y] = make([]bool, len(row))
	}
	return p
}

func (p *maskPlane) setCell(y, x int, restore bool) {
	if p.restored[y][x] == restore {
		return
	}
	p.restored[y][x] = restore
	if restore {
		p.overlay[y][x] = p.canonical[y][x]
		p.count++
	} else {
		p.overlay[y][x] = 0
		p.count--
	}
}

func (p *maskPlane) fill(restore bool) {
	for y := range p.canonical {
		for x := range p.canonical[y] {
			p.setCell(y, x, restore)
		}
	}
}

// Mask2D holds one overlay per detail band (horizontal, vertical, diagonal).
type Mask2D struct {
	rows, cols int
	planes     map[Band]*maskPlane
}

// NewMask2D returns a cleared mask over the detail bands of d.
func NewMask2D(d Decomposition2D) *Mask2D {
	rows, cols := d.Dims()
	m := &Mask2D{rows: rows, cols: cols, planes: make(map[Band]*maskPlane, len(DetailBands))}
	for _, b := range DetailBands {
		m.planes[b] = newMaskPlane(d.Band(b))
	}
	return m
}

// Dims returns the subband shape.
func (m *Mask2D) Dims() (rows, cols int) { return m.rows, m.cols }

// Overlay returns the edited coefficients of a detail band, or nil for the
// scaling band or an unknown name. The grid is owned by the mask.
func (m *Mask2D) Overlay(b Band) [][]float64 {
	p, ok := m.planes[b]
	if !ok {
		return nil
	}
	return p.overlay
}

// State reports the combined state of all detail overlays.
func (m *Mask2D) State() MaskState {
	restored := 0
	for _, p := range m.planes {
		restored += p.count
	}
	return stateOf(restored, len(m.planes)*m.rows*m.cols)
}

// BandState reports the state of a single detail overlay.
func (m *Mask2D) BandState(b Band) MaskState {
	p, ok := m.planes[b]
	if !ok {
		return MaskCleared
	}
	return stateOf(p.count, m.rows*m.cols)
}

// window clamps the square around pt to the band. ok is false when the
// square lies entirely outside.
func (m *Mask2D) window(pt image.Point, radius int) (image.Rectangle, bool) {
	r := image.Rect(pt.X-radius, pt.Y-radius, pt.X+radius+1, pt.Y+radius+1)
	r = r.Intersect(image.Rect(0, 0, m.cols, m.rows))
	return r, !r.Empty()
}

// MaskAt restores or suppresses, in every detail band, the cells within
// radius of pt (X is the column, Y the row), clamped to the band. It reports
// whether any cell was affected.
func (m *Mask2D) MaskAt(pt image.Point, radius int, restore bool) bool {
	w, ok := m.window(pt, radius)
	if !ok {
		return false
	}
	for _, b := range DetailBands {
		m.planes[b].apply(w, restore)
	}
	return true
}

// MaskBandAt is MaskAt restricted to one detail band.
func (m *Mask2D) MaskBandAt(b Band, pt image.Point, radius int, restore bool) bool {
	p, ok := m.planes[b]
	if !ok {
		return false
	}
	w, ok := m.window(pt, radius)
	if !ok {
		return false
	}
	p.apply(w, restore)
	return true
}

func (p *maskPlane) apply(w image.Rectangle, restore bool) {
	for y := w.Min.Y; y < w.Max.Y; y++ {
		for x := w.Min.X; x < w.Max.X; x++ {
			p.setCell(y, x, restore)
		}
	}
}

// RestoreAll copies every canonical detail coefficient into the overlays.
func (m *Mask2D) RestoreAll() {
	for _, p := range m.planes {
		p.fill(true)
	}
}

// ClearAll suppresses every detail coefficient.
func (m *Mask2D) ClearAll() {
	for _, p := range m.planes {
		p.fill(false)
	}
}

// Apply returns a decomposition made of scaling and the current overlays.
// The overlays are shared, not copied.
func (m *Mask2D) Apply(scaling [][]float64) Decomposition2D {
	return Decomposition2D{
		Scaling:    scaling,
		Horizontal: m.planes[BandHorizontal].overlay,
		Vertical:   m.planes[BandVertical].overlay,
		Diagonal:   m.planes[BandDiagonal].overlay,
	}
}
