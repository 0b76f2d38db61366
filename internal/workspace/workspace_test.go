package workspace_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/sample"
	"github.com/YannKr/wavescope/internal/sse"
	"github.com/YannKr/wavescope/internal/wavelet"
	"github.com/YannKr/wavescope/internal/workspace"
)

type recorder struct {
	mu      sync.Mutex
	topics  []string
	notices []workspace.Notice
}

func (r *recorder) PublishJSON(topic, typ string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic+"/"+typ)
	r.notices = append(r.notices, payload.(workspace.Notice))
}

func newSession(t *testing.T, pub workspace.Publisher) *workspace.Session {
	t.Helper()
	s, err := workspace.NewSession("s1", wavelet.Order2, 2, sample.BorderedSquare(64), pub)
	require.NoError(t, err)
	return s
}

func TestSession_InitialStateIsLowPass(t *testing.T) {
	s := newSession(t, nil)
	assert.Equal(t, 2, s.Levels())
	assert.Equal(t, 64, s.Width)

	sum := s.Summary()
	assert.Equal(t, "cleared", sum.MaskState)
	require.Len(t, sum.Levels, 2)
	assert.Equal(t, 32, sum.Levels[0].Rows)
	assert.Equal(t, 16, sum.Levels[1].Cols)
	assert.Equal(t, wavelet.DefaultMaskRadius, sum.Levels[0].Radius)
	assert.Greater(t, sum.Levels[0].Bands["horizontal"].Energy, 0.0)

	low := s.Recomposed()
	assert.Greater(t, wavelet.Distance(sample.BorderedSquare(64), low), 1.0)
}

func TestSession_ApplyPublishes(t *testing.T) {
	rec := &recorder{}
	s := newSession(t, rec)

	radius, err := s.Apply(model.Edit{Op: model.EditMask, Level: 0, X: 10, Y: 10, Radius: -1, Restore: true})
	require.NoError(t, err)
	assert.Equal(t, wavelet.DefaultMaskRadius, radius)
	assert.Equal(t, 1, s.Version())

	_, err = s.Apply(model.Edit{Op: model.EditRestoreAll, Level: -1})
	require.NoError(t, err)
	assert.Less(t, wavelet.Distance(sample.BorderedSquare(64), s.Recomposed()), 1e-6)

	_, err = s.Apply(model.Edit{Op: model.EditClearAll, Level: 1})
	require.NoError(t, err)

	require.Len(t, rec.notices, 3)
	assert.Equal(t, sse.SessionTopic("s1")+"/"+sse.EventRecomposed, rec.topics[0])
	assert.Equal(t, "partial", rec.notices[0].MaskState)
	assert.Equal(t, "full", rec.notices[1].MaskState)
	assert.Equal(t, "partial", rec.notices[2].MaskState)
	assert.Equal(t, 3, rec.notices[2].Version)
}

func TestSession_ApplyRejects(t *testing.T) {
	s := newSession(t, nil)
	for _, e := range []model.Edit{
		{Op: "paint"},
		{Op: model.EditMask, Level: 7},
		{Op: model.EditRestoreAll, Level: 2},
		{Op: model.EditClearAll, Level: 9},
	} {
		_, err := s.Apply(e)
		require.ErrorIs(t, err, workspace.ErrInvalidEdit, "%+v", e)
	}
	assert.Equal(t, 0, s.Version())
}

func TestSession_Subband(t *testing.T) {
	s := newSession(t, nil)
	_, err := s.Apply(model.Edit{Op: model.EditMask, Level: 0, X: 5, Y: 5, Radius: 0, Restore: true})
	require.NoError(t, err)

	canonical, err := s.Subband(0, wavelet.BandHorizontal, false)
	require.NoError(t, err)
	masked, err := s.Subband(0, wavelet.BandHorizontal, true)
	require.NoError(t, err)
	assert.Equal(t, canonical[5][5], masked[5][5])
	assert.Zero(t, masked[5][6])

	// Copies: mutating the result does not leak back.
	masked[5][5] = 12345
	again, _ := s.Subband(0, wavelet.BandHorizontal, true)
	assert.NotEqual(t, 12345.0, again[5][5])

	_, err = s.Subband(4, wavelet.BandScaling, false)
	require.ErrorIs(t, err, workspace.ErrNotFound)
	_, err = s.Subband(0, "bogus", true)
	require.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestNewSession_RejectsBadImage(t *testing.T) {
	_, err := workspace.NewSession("x", wavelet.Order2, 1, [][]float64{{1, 2, 3}}, nil)
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
	_, err = workspace.NewSession("x", wavelet.Order2, 1, nil, nil)
	require.ErrorIs(t, err, wavelet.ErrInvalidArgument)
}

func TestRegistry(t *testing.T) {
	r := workspace.NewRegistry()
	s := newSession(t, nil)
	r.Put(s)
	assert.Equal(t, 1, r.Len())

	got, err := r.Get("s1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	r.Delete("s1")
	_, err = r.Get("s1")
	require.ErrorIs(t, err, workspace.ErrNotFound)
}
