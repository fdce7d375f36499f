package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/domain"
	"github.com/oliversimiyu/pos-system/internal/payment"
)

type SubmitPaymentDTO struct {
	Method      string  `json:"method" validate:"required,oneof=cash mpesa airtel card"`
	AmountPaid  float64 `json:"amount_paid" validate:"gte=0"`
	PhoneNumber string  `json:"phone_number"`
	CardNumber  string  `json:"card_number"`
}

type ReceiptDTO struct {
	ID            int64   `json:"id"`
	ReceiptNumber string  `json:"receipt_number"`
	Total         float64 `json:"total"`
}

type AttemptViewDTO struct {
	State     string      `json:"state"`
	Reference string      `json:"reference"`
	Change    float64     `json:"change,omitempty"`
	Error     string      `json:"error,omitempty"`
	Receipt   *ReceiptDTO `json:"receipt,omitempty"`
}

// SubmitPayment starts a payment attempt for the current cart total. A new
// submission supersedes any attempt still polling for confirmation.
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	total, err := h.orchestrator.BeginCheckout()
	if err != nil {
		respondDomainError(w, err)
		return
	}

	attempt, err := h.flow.Submit(payment.Request{
		Method:      domain.PaymentMethod(req.Method),
		Total:       total,
		AmountPaid:  req.AmountPaid,
		PhoneNumber: req.PhoneNumber,
		CardNumber:  req.CardNumber,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.log.Info("payment submitted",
		zap.String("request_id", getRequestID(r.Context())),
		zap.String("method", req.Method),
		zap.String("state", attempt.State().String()),
	)

	status := http.StatusOK
	if attempt.State() == domain.AttemptAwaitingConfirm {
		status = http.StatusAccepted
	}
	respondJSON(w, status, h.attemptView(attempt))
}

// PaymentState reports the live (or last) attempt for the till to poll.
func (h *Handler) PaymentState(w http.ResponseWriter, _ *http.Request) {
	attempt := h.flow.Current()
	if attempt == nil {
		respondError(w, http.StatusNotFound, "no_payment", "no payment attempt in progress")
		return
	}
	respondJSON(w, http.StatusOK, h.attemptView(attempt))
}

// CancelPayment aborts the live attempt (the payment dialog was closed).
func (h *Handler) CancelPayment(w http.ResponseWriter, _ *http.Request) {
	h.flow.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) attemptView(attempt *payment.Attempt) AttemptViewDTO {
	view := AttemptViewDTO{
		State:     attempt.State().String(),
		Reference: attempt.Reference(),
		Change:    attempt.Change(),
	}
	if err := attempt.Err(); err != nil {
		view.Error = err.Error()
	}

	_, receipt, finErr := h.checkoutSnapshot()
	if attempt.State() == domain.AttemptConfirmed {
		if finErr != nil {
			view.Error = finErr.Error()
		} else if receipt != nil {
			view.Receipt = &ReceiptDTO{ID: receipt.ID, ReceiptNumber: receipt.ReceiptNumber, Total: receipt.Total}
		}
	}
	return view
}
