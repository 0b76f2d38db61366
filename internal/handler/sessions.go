package handler

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/imaging"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/wavelet"
	"github.com/YannKr/wavescope/internal/workspace"
)

var (
	errUnsupportedMedia = errors.New("unsupported media type")
	errImageTooLarge    = errors.New("image dimensions too large")
)

var mimeToExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

type apiSession struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	ContentHash  string `json:"content_hash"`
	Order        int    `json:"order"`
	Levels       int    `json:"levels"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	State        string `json:"state"`
	CreatedAt    string `json:"created_at"`
	LastSeenAt   string `json:"last_seen_at"`
	ExpiresAt    string `json:"expires_at"`
}

func sessionToAPI(s *model.Session) apiSession {
	return apiSession{
		ID:           s.ID,
		OriginalName: s.OriginalName,
		ContentHash:  s.ContentHash,
		Order:        s.Order,
		Levels:       s.Levels,
		Width:        s.Width,
		Height:       s.Height,
		State:        s.State,
		CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339),
		LastSeenAt:   s.LastSeenAt.UTC().Format(time.RFC3339),
		ExpiresAt:    s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

type apiJob struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Error    string `json:"error,omitempty"`
}

func jobToAPI(j *model.Job) *apiJob {
	if j == nil {
		return nil
	}
	return &apiJob{ID: j.ID, State: j.State, Progress: j.Progress, Error: j.ErrorMessage}
}

// SessionCreate — POST /api/v1/sessions
func (h *Handler) SessionCreate(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.Cfg.MaxUploadBytes {
		renderJSONError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", fmt.Sprintf("upload exceeds %d bytes", h.Cfg.MaxUploadBytes))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			renderJSONError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit))
			return
		}
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form")
		return
	}

	order, err := formInt(r, "order", h.Cfg.DefaultOrder)
	if err != nil || order < int(wavelet.Order2) || order > int(wavelet.Order4) {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "order must be 2, 3 or 4")
		return
	}
	levels, err := formInt(r, "levels", h.Cfg.DefaultLevels)
	if err != nil || levels < 1 || levels > h.Cfg.MaxLevels {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("levels must be between 1 and %d", h.Cfg.MaxLevels))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "missing 'image' field in form")
		return
	}
	defer file.Close()

	ext, err := h.checkImage(file)
	if err != nil {
		switch {
		case errors.Is(err, errUnsupportedMedia):
			renderJSONError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "image must be a PNG or JPEG of at least 2x2 pixels")
		case errors.Is(err, errImageTooLarge):
			renderJSONError(w, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", fmt.Sprintf("image exceeds %d pixels", maxImagePixels(h.Cfg.MaxImageSide)))
		default:
			slog.Error("check upload", "error", err)
			renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read image")
		}
		return
	}

	session := &model.Session{
		ID:           uuid.New().String(),
		OriginalName: header.Filename,
		Order:        order,
		Levels:       levels,
		State:        model.SessionPending,
		ExpiresAt:    time.Now().Add(h.ttl()),
	}
	// The row is written under the store lock, before the file lands.
	recorded := false
	imagePath, _, err := h.Originals.Put(file, ext, func(rel, hash string) error {
		session.ImagePath, session.ContentHash = rel, hash
		if err := db.CreateSession(h.DB, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		recorded = true
		return nil
	})
	if err != nil {
		if recorded {
			db.DeleteSession(h.DB, session.ID)
		}
		slog.Error("store original", "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to store image")
		return
	}

	job := &model.Job{ID: uuid.New().String(), JobType: model.JobDecompose, SessionID: session.ID}
	if err := db.EnqueueJob(h.DB, job); err != nil {
		slog.Error("enqueue decompose", "session", session.ID, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to queue decomposition")
		return
	}
	job.State = model.JobPending

	slog.Info("session created", "session", session.ID, "order", order, "levels", levels, "image", imagePath)

	created, err := db.GetSession(h.DB, session.ID)
	if err != nil || created == nil {
		created = session
	}
	renderJSON(w, http.StatusAccepted, map[string]interface{}{
		"session": sessionToAPI(created),
		"job":     jobToAPI(job),
	})
}

// checkImage sniffs an upload, checks its header dimensions and returns the
// extension to store it under. The file is left rewound.
func (h *Handler) checkImage(file multipart.File) (string, error) {
	buf := make([]byte, 512)
	n, _ := io.ReadFull(file, buf)
	ext, ok := mimeToExt[http.DetectContentType(buf[:n])]
	if !ok {
		return "", errUnsupportedMedia
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	cfg, _, err := image.DecodeConfig(file)
	if err != nil || cfg.Width < 2 || cfg.Height < 2 {
		return "", errUnsupportedMedia
	}
	if cfg.Width*cfg.Height > maxImagePixels(h.Cfg.MaxImageSide) {
		return "", errImageTooLarge
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return ext, nil
}

// maxImagePixels bounds what the worker will decode before cropping to
// maxSide: sixteen cropped squares' worth.
func maxImagePixels(maxSide int) int {
	return 16 * maxSide * maxSide
}

type sessionResponse struct {
	Session   apiSession         `json:"session"`
	Job       *apiJob            `json:"job,omitempty"`
	Workspace *workspace.Summary `json:"workspace,omitempty"`
}

// SessionGet — GET /api/v1/sessions/{id}
func (h *Handler) SessionGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := db.GetSession(h.DB, id)
	if err != nil {
		slog.Error("get session", "session", id, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load session")
		return
	}
	if s == nil {
		renderJSONError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	h.touch(id)

	resp := sessionResponse{Session: sessionToAPI(s)}
	if job, err := db.LatestJobForSession(h.DB, id); err == nil {
		resp.Job = jobToAPI(job)
	}
	if ws, err := h.Registry.Get(id); err == nil {
		sum := ws.Summary()
		resp.Workspace = &sum
	}
	renderJSON(w, http.StatusOK, resp)
}

// SubbandPNG — GET /api/v1/sessions/{id}/subbands/{level}/{band}.png
//
// Coefficients are shown as magnitudes scaled so the band's largest maps to
// white. ?masked=1 renders the edited overlay instead of the canonical band.
func (h *Handler) SubbandPNG(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "level must be an integer")
		return
	}
	band, err := wavelet.ParseBand(chi.URLParam(r, "band"))
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}
	ch, ok := channelParam(w, r)
	if !ok {
		return
	}
	masked, _ := strconv.ParseBool(r.URL.Query().Get("masked"))

	m, err := ws.Subband(level, band, masked)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			renderJSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		slog.Error("subband", "session", ws.ID, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to render subband")
		return
	}
	writePNG(w, imaging.FromMatrix(m, imaging.MaxAbs(m), ch))
}

// RecomposedPNG — GET /api/v1/sessions/{id}/recomposed.png
func (h *Handler) RecomposedPNG(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.liveSession(w, r)
	if !ok {
		return
	}
	ch, ok := channelParam(w, r)
	if !ok {
		return
	}
	w.Header().Set("X-Wavescope-Version", strconv.Itoa(ws.Version()))
	writePNG(w, imaging.FromMatrix(ws.Recomposed(), 0, ch))
}

// liveSession resolves {id} to a decomposed session, writing the error
// response itself when there is none.
func (h *Handler) liveSession(w http.ResponseWriter, r *http.Request) (*workspace.Session, bool) {
	id := chi.URLParam(r, "id")
	if ws, err := h.Registry.Get(id); err == nil {
		return ws, true
	}
	s, err := db.GetSession(h.DB, id)
	switch {
	case err != nil:
		slog.Error("get session", "session", id, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load session")
	case s == nil:
		renderJSONError(w, http.StatusNotFound, "NOT_FOUND", "session not found")
	case s.State == model.SessionFailed:
		renderJSONError(w, http.StatusConflict, "SESSION_FAILED", "decomposition failed")
	default:
		renderJSONError(w, http.StatusConflict, "NOT_READY", "session is still being decomposed")
	}
	return nil, false
}

func (h *Handler) ttl() time.Duration {
	return time.Duration(h.Cfg.SessionTTLMins) * time.Minute
}

func (h *Handler) touch(id string) {
	if err := db.TouchSession(h.DB, id, h.ttl()); err != nil {
		slog.Warn("touch session", "session", id, "error", err)
	}
}

func channelParam(w http.ResponseWriter, r *http.Request) (imaging.Channel, bool) {
	v := r.URL.Query().Get("channel")
	if v == "" {
		return imaging.Luminance, true
	}
	ch, err := imaging.ParseChannel(v)
	if err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return 0, false
	}
	return ch, true
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func writePNG(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.EncodePNG(w, img); err != nil {
		slog.Warn("encode png", "error", err)
	}
}
