package cleanup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/wavescope/internal/cleanup"
	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/originals"
	"github.com/YannKr/wavescope/internal/sample"
	"github.com/YannKr/wavescope/internal/wavelet"
	"github.com/YannKr/wavescope/internal/workspace"
)

func TestRunOnce(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Open(dir)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, db.Migrate(database, os.DirFS("../..")))

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "originals"), 0755))
	for _, name := range []string{"shared.png", "solo.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "originals", name), []byte("png"), 0644))
	}

	now := time.Now()
	add := func(id, image string, expires time.Time) {
		require.NoError(t, db.CreateSession(database, &model.Session{
			ID: id, OriginalName: image, ImagePath: "originals/" + image, ContentHash: image,
			Order: 2, Levels: 1, State: model.SessionReady, ExpiresAt: expires,
		}))
	}
	add("old-shared", "shared.png", now.Add(-time.Hour))
	add("live-shared", "shared.png", now.Add(time.Hour))
	add("old-solo", "solo.png", now.Add(-time.Minute))
	require.NoError(t, db.AppendEdit(database, &model.Edit{SessionID: "old-solo", Op: model.EditClearAll, Level: -1}))

	registry := workspace.NewRegistry()
	for _, id := range []string{"old-solo", "live-shared"} {
		ws, err := workspace.NewSession(id, wavelet.Order2, 1, sample.BorderedSquare(16), nil)
		require.NoError(t, err)
		registry.Put(ws)
	}

	c := &cleanup.Cleaner{DB: database, Registry: registry, Originals: originals.New(dir)}
	assert.Equal(t, 2, c.RunOnce(now))

	for _, id := range []string{"old-shared", "old-solo"} {
		s, err := db.GetSession(database, id)
		require.NoError(t, err)
		assert.Nil(t, s, id)
	}
	s, err := db.GetSession(database, "live-shared")
	require.NoError(t, err)
	assert.NotNil(t, s)

	n, err := db.CountEdits(database, "old-solo")
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.Equal(t, 1, registry.Len())
	_, err = registry.Get("old-solo")
	assert.ErrorIs(t, err, workspace.ErrNotFound)

	assert.FileExists(t, filepath.Join(dir, "originals", "shared.png"))
	assert.NoFileExists(t, filepath.Join(dir, "originals", "solo.png"))

	assert.Zero(t, c.RunOnce(now))
}
