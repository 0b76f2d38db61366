package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YannKr/wavescope/internal/config"
	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/imaging"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/sse"
	"github.com/YannKr/wavescope/internal/wavelet"
	"github.com/YannKr/wavescope/internal/workspace"
)

// errSessionGone means the session was reaped while its job ran.
var errSessionGone = errors.New("session no longer exists")

type progressEvent struct {
	SessionID string `json:"session_id"`
	JobID     string `json:"job_id"`
	Progress  int    `json:"progress"`
}

type readyEvent struct {
	SessionID string `json:"session_id"`
	Levels    int    `json:"levels"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Replayed  int    `json:"replayed_edits"`
}

type failedEvent struct {
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}

// Pool runs decomposition jobs: it loads a session's image, builds its
// wavelet pyramid, replays journaled mask edits and registers the result as
// a live workspace session.
type Pool struct {
	database *sql.DB
	cfg      *config.Config
	registry *workspace.Registry
	sseHub   *sse.Hub
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	// PollInterval is how long an idle worker waits before polling again.
	PollInterval time.Duration

	beforeReady func(sessionID string)
}

func NewPool(database *sql.DB, cfg *config.Config, registry *workspace.Registry, sseHub *sse.Hub) *Pool {
	return &Pool{database: database, cfg: cfg, registry: registry, sseHub: sseHub, PollInterval: 2 * time.Second}
}

func (p *Pool) Start(ctx context.Context) {
	p.recover()

	ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	slog.Info("worker pool started", "workers", p.cfg.WorkerCount)
}

func (p *Pool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	slog.Info("worker pool stopped")
}

// recover requeues jobs interrupted by a previous shutdown and schedules a
// rebuild for every ready session, since live pyramids are memory only.
func (p *Pool) recover() {
	if n, err := db.ResetRunningJobs(p.database); err != nil {
		slog.Error("reset running jobs", "error", err)
	} else if n > 0 {
		slog.Info("requeued interrupted jobs", "count", n)
	}

	ready, err := db.ListSessionsByState(p.database, model.SessionReady)
	if err != nil {
		slog.Error("list ready sessions", "error", err)
		return
	}
	for _, s := range ready {
		if _, err := p.registry.Get(s.ID); err == nil {
			continue
		}
		job := &model.Job{ID: uuid.New().String(), JobType: model.JobDecompose, SessionID: s.ID}
		if err := db.EnqueueJob(p.database, job); err != nil {
			slog.Error("enqueue rebuild", "session", s.ID, "error", err)
			continue
		}
		slog.Info("scheduled session rebuild", "session", s.ID, "job", job.ID)
	}
}

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()

	jobTypes := []string{model.JobDecompose}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := db.ClaimNextJob(p.database, jobTypes)
		if err != nil {
			slog.Error("claim job", "worker", id, "error", err)
			sleep(ctx, p.PollInterval)
			continue
		}
		if job == nil {
			sleep(ctx, p.PollInterval)
			continue
		}

		slog.Info("processing job", "worker", id, "job", job.ID, "type", job.JobType, "session", job.SessionID)

		err = p.processDecompose(ctx, job)
		if errors.Is(err, errSessionGone) {
			slog.Info("session reaped during job", "job", job.ID, "session", job.SessionID)
			continue
		}
		if err != nil {
			slog.Error("job failed", "job", job.ID, "error", err)
			db.FailJob(p.database, job.ID, err.Error())
			db.SetSessionState(p.database, job.SessionID, model.SessionFailed)
			p.sseHub.PublishJSON(sse.SessionTopic(job.SessionID), sse.EventFailed, failedEvent{
				SessionID: job.SessionID,
				Error:     err.Error(),
			})
			continue
		}
		db.CompleteJob(p.database, job.ID)
		slog.Info("job completed", "job", job.ID)
	}
}

func (p *Pool) processDecompose(ctx context.Context, job *model.Job) error {
	session, err := db.GetSession(p.database, job.SessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", job.SessionID, err)
	}
	if session == nil {
		return fmt.Errorf("load session %s: not found", job.SessionID)
	}

	p.progress(job, 10)

	img, err := imaging.Load(filepath.Join(p.cfg.DataDir, session.ImagePath))
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	lum := imaging.Crop(imaging.ToLuminanceMatrix(img), p.cfg.MaxImageSide)
	if lum == nil {
		b := img.Bounds()
		return fmt.Errorf("image too small (%dx%d)", b.Dx(), b.Dy())
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.progress(job, 40)

	ws, err := workspace.NewSession(session.ID, wavelet.Order(session.Order), session.Levels, lum, p.sseHub)
	if err != nil {
		return fmt.Errorf("decompose: %w", err)
	}

	p.progress(job, 80)

	edits, err := db.ListEdits(p.database, session.ID)
	if err != nil {
		return fmt.Errorf("load edits: %w", err)
	}
	for _, e := range edits {
		if _, err := ws.Apply(e); err != nil {
			slog.Warn("skipping journaled edit", "session", session.ID, "edit", e.ID, "error", err)
		}
	}

	if p.beforeReady != nil {
		p.beforeReady(session.ID)
	}

	// Put before marking READY: the cleaner deletes the row before the
	// registry entry.
	p.registry.Put(ws)
	ok, err := db.SetSessionReady(p.database, session.ID, ws.Width, ws.Height, ws.Levels())
	if err != nil || !ok {
		p.registry.Delete(session.ID)
	}
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	if !ok {
		return fmt.Errorf("mark ready %s: %w", session.ID, errSessionGone)
	}

	p.sseHub.PublishJSON(sse.SessionTopic(session.ID), sse.EventReady, readyEvent{
		SessionID: session.ID,
		Levels:    ws.Levels(),
		Width:     ws.Width,
		Height:    ws.Height,
		Replayed:  len(edits),
	})
	slog.Info("session ready", "session", session.ID, "levels", ws.Levels(), "width", ws.Width, "height", ws.Height, "replayed", len(edits))
	return nil
}

func (p *Pool) progress(job *model.Job, pct int) {
	db.UpdateJobProgress(p.database, job.ID, pct)
	p.sseHub.PublishJSON(sse.SessionTopic(job.SessionID), sse.EventProgress, progressEvent{
		SessionID: job.SessionID,
		JobID:     job.ID,
		Progress:  pct,
	})
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
