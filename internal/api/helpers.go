package api

import (
	"encoding/json"
	"net/http"

	"beantrace/internal/middleware"
)

type errorBody struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders a domain error as the shared error JSON shape.
// Unmapped errors become 500s and are logged; mapped ones are the
// client's fault and are not.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatusFromDomainError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorBody{
		Code:      status,
		Message:   err.Error(),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
}
