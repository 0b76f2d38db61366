package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"gonum.org/v1/gonum/floats"

	"github.com/YannKr/wavescope/internal/sample"
	"github.com/YannKr/wavescope/internal/wavelet"
)

const maxSignalLen = 1 << 16

type transform1DRequest struct {
	Signal []float64 `json:"signal"`
	Sample string    `json:"sample"`
	N      int       `json:"n"`
	Order  int       `json:"order"`
	Levels int       `json:"levels"`
}

type transform1DLevel struct {
	Level   int       `json:"level"`
	Length  int       `json:"length"`
	Padded  bool      `json:"padded"`
	Scaling []float64 `json:"scaling"`
	Wavelet []float64 `json:"wavelet"`
}

type transform1DResponse struct {
	Order      int                `json:"order"`
	Levels     []transform1DLevel `json:"levels"`
	Recomposed []float64          `json:"recomposed"`
	MaxError   float64            `json:"max_error"`
}

// Transform1D — POST /api/v1/transform/1d
//
// Decomposes a signal (given inline or by sample name) and rebuilds it, so
// clients can inspect the bands and the reconstruction error.
func (h *Handler) Transform1D(w http.ResponseWriter, r *http.Request) {
	var req transform1DRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<20)).Decode(&req); err != nil {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}

	if req.Order == 0 {
		req.Order = h.Cfg.DefaultOrder
	}
	if req.Order < int(wavelet.Order2) || req.Order > int(wavelet.Order4) {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", "order must be 2, 3 or 4")
		return
	}
	if req.Levels == 0 {
		req.Levels = 1
	}
	if req.Levels < 1 || req.Levels > h.Cfg.MaxLevels {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("levels must be between 1 and %d", h.Cfg.MaxLevels))
		return
	}

	signal := req.Signal
	if req.Sample != "" {
		n := req.N
		if n == 0 {
			n = 64
		}
		if n < 2 || n > maxSignalLen {
			renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("n must be between 2 and %d", maxSignalLen))
			return
		}
		var err error
		if signal, err = sample.Signal1D(req.Sample, n); err != nil {
			renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}
	}
	if len(signal) < 2 || len(signal) > maxSignalLen {
		renderJSONError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("signal must have between 2 and %d samples", maxSignalLen))
		return
	}

	f := wavelet.FilterFor(wavelet.Order(req.Order))
	resp := transform1DResponse{Order: req.Order}
	var pyramid []wavelet.Decomposition1D
	for lvl := range wavelet.Cascade1D(f, signal, req.Levels) {
		pyramid = append(pyramid, lvl.Decomposition1D)
		resp.Levels = append(resp.Levels, transform1DLevel{
			Level:   lvl.Level,
			Length:  lvl.Length,
			Padded:  lvl.Padded(),
			Scaling: lvl.Scaling,
			Wavelet: lvl.Wavelet,
		})
	}

	rec, err := wavelet.Reconstruct1D(f, pyramid)
	if err != nil {
		renderJSONError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	resp.Recomposed = rec
	if len(rec) == len(signal) {
		resp.MaxError = floats.Distance(signal, rec, math.Inf(1))
	}
	renderJSON(w, http.StatusOK, resp)
}
