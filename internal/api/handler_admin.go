package api

import (
	"net/http"
)

type tablesResponse struct {
	Tables []string `json:"tables"`
	Count  int      `json:"count"`
}

// ListTables handles GET /v1/tables.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	names, err := h.tracing.Tables(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tablesResponse{Tables: names, Count: len(names)})
}

// IndexStats handles GET /v1/index/stats.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracing.IndexStats(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Reindex handles POST /v1/reindex. It rebuilds the snapshot from the
// table source and returns the new index statistics.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tracing.Reindex(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
