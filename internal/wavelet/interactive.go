package wavelet

import (
	"fmt"
	"image"
)

// AutoRadius asks Interactive2D.MaskAt to pick the radius with DefaultRadius.
const AutoRadius = -1

// Listener is notified after every mask edit that invalidates the
// recomposition.
type Listener func()

type notifier struct {
	listeners []Listener
}

// Subscribe registers l to be called after each mask edit.
func (n *notifier) Subscribe(l Listener) {
	n.listeners = append(n.listeners, l)
}

func (n *notifier) notify() {
	for _, l := range n.listeners {
		l()
	}
}

// Interactive1D is a multi-level 1D pyramid whose detail bands are seen
// through editable masks. All masks start cleared, so the initial
// recomposition is the low-pass approximation.
type Interactive1D struct {
	notifier
	filter     Filter
	levels     []Decomposition1D
	masks      []*Mask1D
	recomposed cached[[]float64]
}

// NewInteractive1D decomposes source into at most levels levels. The source
// needs at least two samples.
func NewInteractive1D(f Filter, source []float64, levels int) (*Interactive1D, error) {
	if levels < 1 {
		return nil, fmt.Errorf("interactive 1d: levels %d: %w", levels, ErrInvalidArgument)
	}
	if len(source) < 2 {
		return nil, fmt.Errorf("interactive 1d: %d samples: %w", len(source), ErrInvalidArgument)
	}
	ia := &Interactive1D{filter: f}
	for lvl := range Cascade1D(f, source, levels) {
		ia.levels = append(ia.levels, lvl.Decomposition1D)
		ia.masks = append(ia.masks, NewMask1D(lvl.Wavelet))
	}
	return ia, nil
}

// Levels returns the number of pyramid levels actually built.
func (ia *Interactive1D) Levels() int { return len(ia.levels) }

// Level returns the canonical decomposition at level l.
func (ia *Interactive1D) Level(l int) (Decomposition1D, bool) {
	if l < 0 || l >= len(ia.levels) {
		return Decomposition1D{}, false
	}
	return ia.levels[l], true
}

// Mask returns the mask at level l, or nil.
func (ia *Interactive1D) Mask(l int) *Mask1D {
	if l < 0 || l >= len(ia.masks) {
		return nil
	}
	return ia.masks[l]
}

func (ia *Interactive1D) changed() {
	ia.recomposed.clear()
	ia.notify()
}

// MaskAt edits the window around idx at level l.
func (ia *Interactive1D) MaskAt(l, idx, radius int, restore bool) error {
	m := ia.Mask(l)
	if m == nil {
		return fmt.Errorf("mask level %d of %d: %w", l, len(ia.masks), ErrInvalidArgument)
	}
	if m.MaskAt(idx, radius, restore) {
		ia.changed()
	}
	return nil
}

// RestoreAll restores every detail coefficient at every level.
func (ia *Interactive1D) RestoreAll() {
	for _, m := range ia.masks {
		m.RestoreAll()
	}
	ia.changed()
}

// ClearAll suppresses every detail coefficient at every level.
func (ia *Interactive1D) ClearAll() {
	for _, m := range ia.masks {
		m.ClearAll()
	}
	ia.changed()
}

// Recomposed rebuilds the signal from the coarsest scaling band and the
// masked detail bands.
func (ia *Interactive1D) Recomposed() []float64 {
	if r, ok := ia.recomposed.get(); ok {
		return r
	}
	if len(ia.levels) == 0 {
		return nil
	}
	masked := make([]Decomposition1D, len(ia.levels))
	for i, d := range ia.levels {
		d.Wavelet = ia.masks[i].Overlay()
		masked[i] = d
	}
	r, err := Reconstruct1D(ia.filter, masked)
	if err != nil {
		return nil
	}
	ia.recomposed.set(r)
	return r
}

// Interactive2D is the 2D counterpart of Interactive1D.
type Interactive2D struct {
	notifier
	filter     Filter
	levels     []Decomposition2D
	masks      []*Mask2D
	recomposed cached[[][]float64]
}

// NewInteractive2D decomposes source into at most levels levels.
func NewInteractive2D(f Filter, source [][]float64, levels int) (*Interactive2D, error) {
	if levels < 1 {
		return nil, fmt.Errorf("interactive 2d: levels %d: %w", levels, ErrInvalidArgument)
	}
	seq, err := Cascade2D(f, source, levels)
	if err != nil {
		return nil, fmt.Errorf("interactive 2d: %w", err)
	}
	ia := &Interactive2D{filter: f}
	for lvl := range seq {
		ia.levels = append(ia.levels, lvl.Decomposition2D)
		ia.masks = append(ia.masks, NewMask2D(lvl.Decomposition2D))
	}
	return ia, nil
}

// Filter returns the filter in use.
func (ia *Interactive2D) Filter() Filter { return ia.filter }

// Levels returns the number of pyramid levels actually built.
func (ia *Interactive2D) Levels() int { return len(ia.levels) }

// Level returns the canonical decomposition at level l.
func (ia *Interactive2D) Level(l int) (Decomposition2D, bool) {
	if l < 0 || l >= len(ia.levels) {
		return Decomposition2D{}, false
	}
	return ia.levels[l], true
}

// Mask returns the mask at level l, or nil.
func (ia *Interactive2D) Mask(l int) *Mask2D {
	if l < 0 || l >= len(ia.masks) {
		return nil
	}
	return ia.masks[l]
}

func (ia *Interactive2D) changed() {
	ia.recomposed.clear()
	ia.notify()
}

// MaskAt edits the window around pt in every detail band of level l. A
// negative radius selects DefaultRadius for that level's subband shape. It
// returns the radius used.
func (ia *Interactive2D) MaskAt(l int, pt image.Point, radius int, restore bool) (int, error) {
	m := ia.Mask(l)
	if m == nil {
		return 0, fmt.Errorf("mask level %d of %d: %w", l, len(ia.masks), ErrInvalidArgument)
	}
	if radius < 0 {
		radius = DefaultRadius(m.Dims())
	}
	if m.MaskAt(pt, radius, restore) {
		ia.changed()
	}
	return radius, nil
}

// RestoreLevel restores every detail coefficient of level l.
func (ia *Interactive2D) RestoreLevel(l int) error {
	m := ia.Mask(l)
	if m == nil {
		return fmt.Errorf("restore level %d of %d: %w", l, len(ia.masks), ErrInvalidArgument)
	}
	m.RestoreAll()
	ia.changed()
	return nil
}

// ClearLevel suppresses every detail coefficient of level l.
func (ia *Interactive2D) ClearLevel(l int) error {
	m := ia.Mask(l)
	if m == nil {
		return fmt.Errorf("clear level %d of %d: %w", l, len(ia.masks), ErrInvalidArgument)
	}
	m.ClearAll()
	ia.changed()
	return nil
}

// RestoreAll restores every detail coefficient at every level.
func (ia *Interactive2D) RestoreAll() {
	for _, m := range ia.masks {
		m.RestoreAll()
	}
	ia.changed()
}

// ClearAll suppresses every detail coefficient at every level.
func (ia *Interactive2D) ClearAll() {
	for _, m := range ia.masks {
		m.ClearAll()
	}
	ia.changed()
}

// Recomposed rebuilds the matrix from the coarsest scaling band and the
// masked detail bands of every level.
func (ia *Interactive2D) Recomposed() [][]float64 {
	if r, ok := ia.recomposed.get(); ok {
		return r
	}
	if len(ia.levels) == 0 {
		return nil
	}
	masked := make([]Decomposition2D, len(ia.levels))
	for i, d := range ia.levels {
		masked[i] = ia.masks[i].Apply(d.Scaling)
	}
	r, err := Reconstruct2D(ia.filter, masked)
	if err != nil {
		return nil
	}
	ia.recomposed.set(r)
	return r
}
