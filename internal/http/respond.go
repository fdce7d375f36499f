package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/oliversimiyu/pos-system/internal/api"
	"github.com/oliversimiyu/pos-system/internal/cart"
	"github.com/oliversimiyu/pos-system/internal/checkout"
	"github.com/oliversimiyu/pos-system/internal/payment"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// respondRaw forwards a backend JSON payload untouched.
func respondRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// respondDomainError maps component errors to HTTP statuses and stable
// machine codes for the till UI.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, cart.ErrOutOfStock):
		respondError(w, http.StatusBadRequest, "out_of_stock", err.Error())
	case errors.Is(err, cart.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, "insufficient_stock", err.Error())
	case errors.Is(err, payment.ErrInsufficientPayment):
		respondError(w, http.StatusBadRequest, "insufficient_payment", err.Error())
	case errors.Is(err, payment.ErrInvalidPhoneNumber):
		respondError(w, http.StatusBadRequest, "invalid_phone_number", err.Error())
	case errors.Is(err, payment.ErrInvalidCardNumber):
		respondError(w, http.StatusBadRequest, "invalid_card_number", err.Error())
	case errors.Is(err, payment.ErrPaymentFailed):
		respondError(w, http.StatusBadGateway, "payment_failed", err.Error())
	case errors.Is(err, checkout.ErrProductNotFound), errors.Is(err, api.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, api.ErrSessionExpired):
		respondError(w, http.StatusUnauthorized, "session_expired", err.Error())
	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			status := apiErr.StatusCode
			if status < 400 || status > 499 {
				status = http.StatusBadGateway
			}
			respondError(w, status, "backend_error", apiErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
