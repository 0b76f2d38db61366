package wavelet

import (
	"fmt"
	"iter"
)

// Level1D is one level of a 1D pyramid. Level 0 is the finest.
type Level1D struct {
	Level int
	Decomposition1D
}

// Level2D is one level of a 2D pyramid. Level 0 is the finest.
type Level2D struct {
	Level int
	Decomposition2D
}

// Cascade1D returns a lazy sequence of up to levels decompositions, finest
// first, each obtained by transforming the previous level's scaling band. The
// sequence ends early once the scaling band is shorter than the filter.
// Every iteration recomputes from source.
func Cascade1D(f Filter, source []float64, levels int) iter.Seq[Level1D] {
	src := cloneSlice(source)
	return func(yield func(Level1D) bool) {
		cur := src
		for l := 0; l < levels; l++ {
			if l > 0 && len(cur) < f.Len() {
				return
			}
			d := Forward1D(f, cur)
			if !yield(Level1D{Level: l, Decomposition1D: d}) {
				return
			}
			cur = d.Scaling
		}
	}
}

// Cascade2D is the 2D counterpart of Cascade1D. The source is validated up
// front so the sequence itself cannot fail.
func Cascade2D(f Filter, source [][]float64, levels int) (iter.Seq[Level2D], error) {
	if _, _, err := checkSource(source); err != nil {
		return nil, fmt.Errorf("cascade 2d: %w", err)
	}
	src := cloneGrid(source)
	return func(yield func(Level2D) bool) {
		cur := src
		for l := 0; l < levels; l++ {
			if l > 0 {
				rows, cols := len(cur), len(cur[0])
				if min(rows, cols) < f.Len() {
					return
				}
			}
			d, err := Forward2D(f, cur)
			if err != nil {
				return
			}
			if !yield(Level2D{Level: l, Decomposition2D: d}) {
				return
			}
			cur = d.Scaling
		}
	}, nil
}

// Reconstruct1D inverts a pyramid collected from Cascade1D. Only the
// coarsest level's scaling band is used; finer scaling bands are rebuilt.
func Reconstruct1D(f Filter, levels []Decomposition1D) ([]float64, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("reconstruct 1d: no levels: %w", ErrInvalidArgument)
	}
	s := levels[len(levels)-1].Scaling
	for i := len(levels) - 1; i >= 0; i-- {
		r, err := Inverse1D(f, s, levels[i].Wavelet)
		if err != nil {
			return nil, fmt.Errorf("reconstruct 1d level %d: %w", i, err)
		}
		if n := levels[i].Length; n < len(r) {
			r = r[:n]
		}
		s = r
	}
	return s, nil
}

// Reconstruct2D inverts a pyramid collected from Cascade2D.
func Reconstruct2D(f Filter, levels []Decomposition2D) ([][]float64, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("reconstruct 2d: no levels: %w", ErrInvalidArgument)
	}
	s := levels[len(levels)-1].Scaling
	for i := len(levels) - 1; i >= 0; i-- {
		d := levels[i]
		d.Scaling = s
		r, err := Inverse2D(f, d)
		if err != nil {
			return nil, fmt.Errorf("reconstruct 2d level %d: %w", i, err)
		}
		s = r
	}
	return s, nil
}
