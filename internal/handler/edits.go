package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/YannKr/wavescope/internal/db"
	"github.com/YannKr/wavescope/internal/model"
	"github.com/YannKr/wavescope/internal/workspace"
)

type editRequest struct {
	Op      string `json:"op"`
	Level   *int   `json:"level"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Radius  *int   `json:"radius"`
	Restore bool   `json:"restore"`
}

type editResponse struct {
	EditID    int64  `json:"edit_id"`
	Version   int    `json:"version"`
	Radius    int    `json:"radius"`
	MaskState string `json:"mask_state"`
}

type apiEdit struct {
	ID        int64  `json:"id"`
	Op        string `json:"op"`
	Level     int    `json:"level"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Radius    int    `json:"radius"`
	Restore   bool   `json:"restore"`
	CreatedAt string `json:"created_at"`
}

// EditCreate — POST /api/v1/sessions/{id}/edits
//
// A mask op needs a level and a position; its radius defaults to the
// level's. Bulk ops without a level apply to every level.
func (h *Handler) EditCreate(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.liveSession(w, r)
	if !ok {
		return
	}

	var req editRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	e := model.Edit{
		SessionID: ws.ID,
		Op:        req.Op,
		Level:     -1,
		X:         req.X,
		Y:         req.Y,
		Radius:    -1,
		Restore:   req.Restore,
	}
	if req.Level != nil {
		e.Level = *req.Level
	} else if req.Op == model.EditMask {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "mask edits need a level")
		return
	}
	if req.Radius != nil {
		e.Radius = *req.Radius
	}

	// An edit goes live only once it is journaled.
	h.editMu.Lock()
	if err := db.AppendEdit(h.DB, &e); err != nil {
		h.editMu.Unlock()
		slog.Error("journal edit", "session", ws.ID, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to record edit")
		return
	}
	radius, err := ws.Apply(e)
	if err != nil {
		if derr := db.DeleteEdit(h.DB, e.ID); derr != nil {
			slog.Warn("withdraw rejected edit", "session", ws.ID, "edit", e.ID, "error", derr)
		}
	}
	h.editMu.Unlock()

	if err != nil {
		if errors.Is(err, workspace.ErrInvalidEdit) {
			renderJSONError(w, http.StatusBadRequest, "INVALID_EDIT", err.Error())
			return
		}
		slog.Error("apply edit", "session", ws.ID, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to apply edit")
		return
	}
	h.touch(ws.ID)

	renderJSON(w, http.StatusOK, editResponse{
		EditID:    e.ID,
		Version:   ws.Version(),
		Radius:    radius,
		MaskState: ws.MaskState().String(),
	})
}

// EditList — GET /api/v1/sessions/{id}/edits
func (h *Handler) EditList(w http.ResponseWriter, r *http.Request) {
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

	edits, err := db.ListEdits(h.DB, id)
	if err != nil {
		slog.Error("list edits", "session", id, "error", err)
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list edits")
		return
	}
	out := make([]apiEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, apiEdit{
			ID:        e.ID,
			Op:        e.Op,
			Level:     e.Level,
			X:         e.X,
			Y:         e.Y,
			Radius:    e.Radius,
			Restore:   e.Restore,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	renderJSON(w, http.StatusOK, map[string]interface{}{"edits": out})
}
