package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/YannKr/wavescope/internal/config"
	"github.com/YannKr/wavescope/internal/originals"
	"github.com/YannKr/wavescope/internal/sse"
	"github.com/YannKr/wavescope/internal/workspace"
)

type Handler struct {
	DB        *sql.DB
	Cfg       *config.Config
	Registry  *workspace.Registry
	Originals *originals.Store
	SSE       *sse.Hub
	templates map[string]*template.Template

	// editMu keeps the journal order equal to the order edits were applied.
	editMu sync.Mutex
}

func New(database *sql.DB, cfg *config.Config, templateFS fs.FS, registry *workspace.Registry, store *originals.Store, sseHub *sse.Hub) *Handler {
	funcMap := template.FuncMap{
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02 15:04 UTC")
		},
		"shortenID": func(id string) string {
			if len(id) > 8 {
				return id[:8]
			}
			return id
		},
		"stateBadge": func(state string) template.HTML {
			class := "badge"
			switch state {
			case "PENDING":
				class += " badge-blue"
			case "READY":
				class += " badge-green"
			case "FAILED":
				class += " badge-red"
			}
			return template.HTML(fmt.Sprintf(`<span class="%s">%s</span>`, class, state))
		},
	}

	// Parse layout template as the base
	layoutTmpl := template.Must(
		template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"),
	)

	// Build per-page template sets: clone layout + parse page
	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		panic("read template dir: " + err.Error())
	}
	for _, e := range entries {
		name := e.Name()
		if name == "layout.html" || e.IsDir() {
			continue
		}
		t := template.Must(template.Must(layoutTmpl.Clone()).ParseFS(templateFS, name))
		templates[name] = t
	}

	return &Handler{
		DB:        database,
		Cfg:       cfg,
		Registry:  registry,
		Originals: store,
		SSE:       sseHub,
		templates: templates,
	}
}

type PageData struct {
	Title     string
	CSRFField template.HTML
	Flash     string
	Error     string
	Data      interface{}
}

func (h *Handler) render(w http.ResponseWriter, name string, data PageData) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode json response", "error", err)
	}
}

func renderJSONError(w http.ResponseWriter, status int, code, msg string) {
	renderJSON(w, status, map[string]apiError{"error": {Code: code, Message: msg}})
}
