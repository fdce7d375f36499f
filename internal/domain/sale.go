package domain

// SaleItem is one cart line in the sale payload sent to the backend.
type SaleItem struct {
	Product  int64   `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// SaleRequest is the finalized sale submission. ClientRef is a terminal-side
// idempotency key so a resubmitted sale is not recorded twice.
type SaleRequest struct {
	Items         []SaleItem    `json:"items"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	AmountPaid    float64       `json:"amount_paid"`
	ClientRef     string        `json:"client_ref,omitempty"`
}

// SaleReceipt is the backend's acknowledgement. The terminal never invents
// receipt numbers.
type SaleReceipt struct {
	ID            int64   `json:"id"`
	ReceiptNumber string  `json:"receipt_number"`
	Total         float64 `json:"total"`
}
