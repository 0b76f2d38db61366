package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	wavescope "github.com/YannKr/wavescope"
	"github.com/YannKr/wavescope/internal/cleanup"
	"github.com/YannKr/wavescope/internal/config"
	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/handler"
	"github.com/YannKr/wavescope/internal/originals"
	"github.com/YannKr/wavescope/internal/sse"
	"github.com/YannKr/wavescope/internal/worker"
	"github.com/YannKr/wavescope/internal/workspace"
)

func Run(ctx context.Context, cfg *config.Config) error {
	// Ensure data directories exist
	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "originals")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	// Open database
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	// Run migrations
	if err := db.Migrate(database, wavescope.MigrationFS); err != nil {
		return err
	}
	slog.Info("database ready")

	registry := workspace.NewRegistry()
	store := originals.New(cfg.DataDir)

	// Start cleanup scheduler
	cleaner := &cleanup.Cleaner{
		DB:        database,
		Registry:  registry,
		Originals: store,
		Interval:  time.Duration(cfg.CleanupIntervalMins) * time.Minute,
	}
	cleaner.Start(ctx)
	defer cleaner.Stop()

	// Create SSE hub for real-time updates
	sseHub := sse.New()

	// Start worker pool; it also rebuilds sessions that were ready before a
	// restart.
	pool := worker.NewPool(database, cfg, registry, sseHub)
	pool.Start(ctx)
	defer pool.Stop()

	// Get template FS (sub-directory)
	templateFS, err := fs.Sub(wavescope.TemplateFS, "templates")
	if err != nil {
		return err
	}

	// Rate limiter for uploads, edits and transforms: 10 requests/second,
	// burst of 40
	writeRL := handler.NewRateLimiter(10, 40)
	defer writeRL.Stop()

	// Build handler and routes
	h := handler.New(database, cfg, templateFS, registry, store, sseHub)
	router := h.Routes(writeRL)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL, "workers", cfg.WorkerCount)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
