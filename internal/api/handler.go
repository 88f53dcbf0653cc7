// Package api exposes the tracing service over HTTP. Handlers are thin
// adapters: decode the request, call the service, encode the result. All
// error responses share the same JSON shape, with the status code taken
// from the domain error mapper.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"beantrace/internal/domain"
	"beantrace/internal/service/tracing"
)

// Handler serves the tracing API.
type Handler struct {
	tracing *tracing.Service
	logger  *slog.Logger
}

// NewHandler builds the API handler around the tracing service.
func NewHandler(svc *tracing.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tracing: svc,
		logger:  logger.With("component", "api"),
	}
}

type traceRequest struct {
	Lot      string `json:"lot"`
	MaxDepth int    `json:"max_depth"`
}

type batchTraceRequest struct {
	Lots     []string `json:"lots"`
	MaxDepth int      `json:"max_depth"`
}

// Healthz reports liveness. It is mounted outside the authenticated routes.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Trace handles POST /v1/trace.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	var req traceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	result, err := h.tracing.Trace(r.Context(), req.Lot, req.MaxDepth)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// TraceBatch handles POST /v1/trace/batch.
func (h *Handler) TraceBatch(w http.ResponseWriter, r *http.Request) {
	var req batchTraceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	result, err := h.tracing.TraceBatch(r.Context(), req.Lots, req.MaxDepth, nil)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LotStatistics handles GET /v1/lots/{lot}/statistics.
func (h *Handler) LotStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracing.LotStats(r.Context(), chi.URLParam(r, "lot"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
