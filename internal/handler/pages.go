package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/imaging"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/sample"
)

type indexData struct {
	CSRFToken     string
	Sessions      []model.Session
	Samples       []string
	Orders        []int
	DefaultOrder  int
	DefaultLevels int
	MaxLevels     int
	MaxUploadMB   int64
}

// Index — GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	sessions, err := db.ListRecentSessions(h.DB, 20)
	if err != nil {
		slog.Error("list sessions", "error", err)
	}
	h.render(w, "index.html", PageData{
		Title:     "Wavescope",
		CSRFField: csrf.TemplateField(r),
		Data: indexData{
			CSRFToken:     csrf.Token(r),
			Sessions:      sessions,
			Samples:       []string{"square"},
			Orders:        []int{2, 3, 4},
			DefaultOrder:  h.Cfg.DefaultOrder,
			DefaultLevels: h.Cfg.DefaultLevels,
			MaxLevels:     h.Cfg.MaxLevels,
			MaxUploadMB:   h.Cfg.MaxUploadBytes >> 20,
		},
	})
}

// SamplePNG — GET /samples/{name}.png?n=256
func (h *Handler) SamplePNG(w http.ResponseWriter, r *http.Request) {
	n := 256
	if v := r.URL.Query().Get("n"); v != "" {
		var err error
		if n, err = strconv.Atoi(v); err != nil || n < 2 || n > h.Cfg.MaxImageSide {
			http.Error(w, "Bad sample size", http.StatusBadRequest)
			return
		}
	}
	m, err := sample.Signal2D(chi.URLParam(r, "name"), n)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writePNG(w, imaging.FromMatrix(m, 0, imaging.Luminance))
}
