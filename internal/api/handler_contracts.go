package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"beantrace/internal/domain"
)

type contractsResponse struct {
	Contracts *domain.SaleContractMap `json:"contracts"`
	Count     int                     `json:"count"`
}

type contractLotsResponse struct {
	SaleContract string   `json:"sale_contract"`
	Lots         []string `json:"lots"`
	Count        int      `json:"count"`
}

// ListContracts handles GET /v1/contracts.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	cm, err := h.tracing.Contracts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contractsResponse{Contracts: cm, Count: cm.Len()})
}

// ContractLots handles GET /v1/contracts/{id}/lots.
func (h *Handler) ContractLots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lots, err := h.tracing.ResolveContract(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contractLotsResponse{SaleContract: id, Lots: lots, Count: len(lots)})
}

// ContractReport handles GET /v1/contracts/{id}/report. An optional
// max_depth query parameter overrides the configured traversal bound.
func (h *Handler) ContractReport(w http.ResponseWriter, r *http.Request) {
	maxDepth := 0
	if v := r.URL.Query().Get("max_depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, r, domain.ErrValidation("max_depth must be a positive integer, got %q", v))
			return
		}
		maxDepth = n
	}

	report, err := h.tracing.ContractReport(r.Context(), chi.URLParam(r, "id"), maxDepth)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
