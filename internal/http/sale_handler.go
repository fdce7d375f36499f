package http

import (
	"net/http"

	"go.uber.org/zap"
)

// RetryFinalize re-submits the sale for a confirmed payment whose first
// finalization failed. The cart is still intact at this point; success
// clears it.
func (h *Handler) RetryFinalize(w http.ResponseWriter, r *http.Request) {
	pending, _, _ := h.checkoutSnapshot()
	if pending == nil {
		respondError(w, http.StatusConflict, "no_pending_sale", "no confirmed payment awaiting finalization")
		return
	}

	receipt, err := h.finalizer.Finalize(r.Context(), h.orchestrator.Cart(), *pending)
	if err != nil {
		h.mu.Lock()
		h.finalizeErr = err
		h.mu.Unlock()
		respondDomainError(w, err)
		return
	}

	h.mu.Lock()
	h.pendingResult = nil
	h.finalizeErr = nil
	h.lastReceipt = receipt
	h.mu.Unlock()

	h.log.Info("sale finalize retried",
		zap.String("request_id", getRequestID(r.Context())),
		zap.String("receipt_number", receipt.ReceiptNumber),
	)

	respondJSON(w, http.StatusCreated, ReceiptDTO{
		ID:            receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		Total:         receipt.Total,
	})
}

// ParkSale queues the paid cart in the local outbox for later resubmission
// and clears it. Explicit operator action for an unreachable backend.
func (h *Handler) ParkSale(w http.ResponseWriter, _ *http.Request) {
	pending, _, _ := h.checkoutSnapshot()
	if pending == nil {
		respondError(w, http.StatusConflict, "no_pending_sale", "no confirmed payment awaiting finalization")
		return
	}

	ref, err := h.finalizer.Park(h.orchestrator.Cart(), *pending)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.mu.Lock()
	h.pendingResult = nil
	h.finalizeErr = nil
	h.mu.Unlock()

	respondJSON(w, http.StatusAccepted, map[string]string{"client_ref": ref})
}

// SalesToday passes through the backend's sales-history view.
func (h *Handler) SalesToday(w http.ResponseWriter, r *http.Request) {
	raw, err := h.backend.SalesToday(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondRaw(w, http.StatusOK, raw)
}

// LowStock passes through the backend's inventory alert list.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.backend.LowStock(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// Dashboard passes through the backend's reporting dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	raw, err := h.backend.Dashboard(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondRaw(w, http.StatusOK, raw)
}
