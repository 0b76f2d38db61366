// Package workspace holds the live interactive sessions: one wavelet pyramid
// of an image's luminance plus its editable detail masks.
package workspace

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/YannKr/wavescope/internal/imaging"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/sse"
	"github.com/YannKr/wavescope/internal/wavelet"
)

var (
	ErrNotFound    = errors.New("workspace: session not found")
	ErrInvalidEdit = errors.New("workspace: invalid edit")
)

// Publisher receives recomposition notices. *sse.Hub satisfies it.
type Publisher interface {
	PublishJSON(topic, typ string, payload any)
}

// Notice is the payload of a recomposed event.
type Notice struct {
	SessionID string `json:"session_id"`
	Version   int    `json:"version"`
	MaskState string `json:"mask_state"`
}

// Session is one image under interactive exploration. All methods are safe
// for concurrent use.
type Session struct {
	ID     string
	Order  wavelet.Order
	Width  int
	Height int

	mu      sync.Mutex
	ia      *wavelet.Interactive2D
	version int
}

// NewSession decomposes the luminance matrix lum into at most levels levels.
// Every mask edit bumps the session version and publishes a recomposed
// notice through pub, which may be nil.
func NewSession(id string, order wavelet.Order, levels int, lum [][]float64, pub Publisher) (*Session, error) {
	rows, cols, ok := wavelet.Dims(lum)
	if !ok {
		return nil, fmt.Errorf("new session %s: %w", id, wavelet.ErrInvalidArgument)
	}
	ia, err := wavelet.NewInteractive2D(wavelet.FilterFor(order), lum, levels)
	if err != nil {
		return nil, fmt.Errorf("new session %s: %w", id, err)
	}
	s := &Session{ID: id, Order: order, Width: cols, Height: rows, ia: ia}
	ia.Subscribe(func() {
		// Runs inside an edit, with s.mu held.
		s.version++
		if pub != nil {
			pub.PublishJSON(sse.SessionTopic(id), sse.EventRecomposed, Notice{
				SessionID: id,
				Version:   s.version,
				MaskState: s.maskStateLocked().String(),
			})
		}
	})
	return s, nil
}

// Levels returns the number of pyramid levels.
func (s *Session) Levels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ia.Levels()
}

// Version counts the edits that changed the recomposition.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Apply performs one mask edit and returns the radius used (0 for bulk ops).
// A negative radius on a mask op selects the level's default radius; a
// negative level on a bulk op targets every level.
func (s *Session) Apply(e model.Edit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch e.Op {
	case model.EditMask:
		radius := e.Radius
		if radius < 0 {
			radius = wavelet.AutoRadius
		}
		r, err := s.ia.MaskAt(e.Level, image.Pt(e.X, e.Y), radius, e.Restore)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidEdit, err)
		}
		return r, nil
	case model.EditRestoreAll:
		if e.Level < 0 {
			s.ia.RestoreAll()
			return 0, nil
		}
		if err := s.ia.RestoreLevel(e.Level); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidEdit, err)
		}
		return 0, nil
	case model.EditClearAll:
		if e.Level < 0 {
			s.ia.ClearAll()
			return 0, nil
		}
		if err := s.ia.ClearLevel(e.Level); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidEdit, err)
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: unknown op %q", ErrInvalidEdit, e.Op)
	}
}

// Recomposed returns the image rebuilt from the masked pyramid. The matrix
// is never modified after it is returned.
func (s *Session) Recomposed() [][]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ia.Recomposed()
}

// Subband returns a copy of one band of a level. With masked set, detail
// bands are taken from the edit overlay rather than the canonical
// coefficients.
func (s *Session) Subband(level int, band wavelet.Band, masked bool) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.ia.Level(level)
	if !ok {
		return nil, fmt.Errorf("level %d: %w", level, ErrNotFound)
	}
	m := d.Band(band)
	if masked && band != wavelet.BandScaling {
		m = s.ia.Mask(level).Overlay(band)
	}
	if m == nil {
		return nil, fmt.Errorf("band %q: %w", band, ErrNotFound)
	}
	return clone(m), nil
}

// MaskState aggregates the mask state of every level.
func (s *Session) MaskState() wavelet.MaskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maskStateLocked()
}

func (s *Session) maskStateLocked() wavelet.MaskState {
	full, cleared := true, true
	for l := 0; l < s.ia.Levels(); l++ {
		switch s.ia.Mask(l).State() {
		case wavelet.MaskCleared:
			full = false
		case wavelet.MaskFull:
			cleared = false
		default:
			return wavelet.MaskPartial
		}
	}
	switch {
	case cleared:
		return wavelet.MaskCleared
	case full:
		return wavelet.MaskFull
	default:
		return wavelet.MaskPartial
	}
}

// BandStats describes the coefficients of one subband.
type BandStats struct {
	MaxAbs float64 `json:"max_abs"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Energy float64 `json:"energy"`
}

// LevelSummary describes one pyramid level.
type LevelSummary struct {
	Level     int                  `json:"level"`
	Rows      int                  `json:"rows"`
	Cols      int                  `json:"cols"`
	Radius    int                  `json:"default_radius"`
	MaskState string               `json:"mask_state"`
	Bands     map[string]BandStats `json:"bands"`
}

// Summary is a snapshot of a session for API responses.
type Summary struct {
	ID        string         `json:"id"`
	Order     int            `json:"order"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	Version   int            `json:"version"`
	MaskState string         `json:"mask_state"`
	Levels    []LevelSummary `json:"levels"`
}

// Summary computes per-level statistics of the canonical coefficients.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Summary{
		ID:        s.ID,
		Order:     int(s.Order),
		Width:     s.Width,
		Height:    s.Height,
		Version:   s.version,
		MaskState: s.maskStateLocked().String(),
	}
	for l := 0; l < s.ia.Levels(); l++ {
		d, _ := s.ia.Level(l)
		rows, cols := d.Dims()
		ls := LevelSummary{
			Level:     l,
			Rows:      rows,
			Cols:      cols,
			Radius:    wavelet.DefaultRadius(rows, cols),
			MaskState: s.ia.Mask(l).State().String(),
			Bands:     make(map[string]BandStats, 4),
		}
		for _, b := range []wavelet.Band{wavelet.BandScaling, wavelet.BandHorizontal, wavelet.BandVertical, wavelet.BandDiagonal} {
			ls.Bands[string(b)] = bandStats(d.Band(b))
		}
		out.Levels = append(out.Levels, ls)
	}
	return out
}

func bandStats(m [][]float64) BandStats {
	flat := make([]float64, 0, len(m)*len(m[0]))
	for _, row := range m {
		flat = append(flat, row...)
	}
	mean, std := stat.MeanStdDev(flat, nil)
	return BandStats{
		MaxAbs: imaging.MaxAbs(m),
		Mean:   mean,
		StdDev: std,
		Energy: wavelet.Energy(m),
	}
}

func clone(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Registry is the set of live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Put adds or replaces a session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return s, nil
}

// Delete drops a session if present.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
