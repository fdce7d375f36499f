package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

// CreateProduct forwards a new catalog entry to the backend, which owns
// field validation.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.backend.CreateProduct(r.Context(), payload)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// UpdateProduct forwards an edited catalog entry and drops the product's
// cache keys so tills see the change immediately.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}

	var payload json.RawMessage
	if errDec := json.NewDecoder(r.Body).Decode(&payload); errDec != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p, err := h.backend.UpdateProduct(r.Context(), productID, payload)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.orchestrator.InvalidateProducts(r.Context(), []domain.Product{*p})
	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct removes a catalog entry. Only the ID key can be dropped
// here; a stale barcode key ages out with its TTL.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be numeric")
		return
	}

	if errDel := h.backend.DeleteProduct(r.Context(), productID); errDel != nil {
		respondDomainError(w, errDel)
		return
	}

	h.orchestrator.InvalidateProducts(r.Context(), []domain.Product{{ID: productID}})
	w.WriteHeader(http.StatusNoContent)
}
