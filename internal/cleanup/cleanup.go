// Package cleanup reaps sessions whose idle time-to-live has run out.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/originals"
	"github.com/YannKr/wavescope/internal/workspace"
)

type Cleaner struct {
	DB        *sql.DB
	Registry  *workspace.Registry
	Originals *originals.Store
	Interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func (c *Cleaner) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx)
	slog.Info("cleanup scheduler started", "interval", c.Interval)
}

func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	slog.Info("cleanup scheduler stopped")
}

func (c *Cleaner) loop(ctx context.Context) {
	defer close(c.done)

	c.RunOnce(time.Now())

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			c.RunOnce(t)
		}
	}
}

// RunOnce drops every session that expired before now: its live pyramid,
// its rows (edits and jobs cascade) and, once no other session shares it,
// its stored original. It returns the number of sessions reaped.
func (c *Cleaner) RunOnce(now time.Time) int {
	sessions, err := db.ListExpiredSessions(c.DB, now)
	if err != nil {
		slog.Error("cleanup: list expired sessions", "error", err)
		return 0
	}

	reaped := 0
	for _, s := range sessions {
		// Row first: a worker finishing this session checks the row after
		// registering it.
		if err := db.DeleteSession(c.DB, s.ID); err != nil {
			slog.Error("cleanup: delete session", "id", s.ID, "error", err)
			continue
		}
		if c.Registry != nil {
			c.Registry.Delete(s.ID)
		}
		reaped++
		slog.Info("cleanup: expired session", "id", s.ID, "last_seen", s.LastSeenAt)

		gone, err := c.Originals.Release(s.ImagePath, func() (bool, error) {
			n, err := db.CountSessionsByImage(c.DB, s.ImagePath)
			return n > 0, err
		})
		if err != nil {
			slog.Warn("cleanup: release original", "path", s.ImagePath, "error", err)
		} else if gone {
			slog.Info("cleanup: removed original", "path", s.ImagePath)
		}
	}
	return reaped
}
