package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

// InitiatePaymentRequest starts a payment on the backend. Reference is a
// terminal-generated transaction reference; the backend enforces uniqueness.
type InitiatePaymentRequest struct {
	Method      domain.PaymentMethod `json:"method"`
	Amount      float64              `json:"amount"`
	PhoneNumber string               `json:"phone_number,omitempty"`
	CardNumber  string               `json:"card_number,omitempty"`
	Reference   string               `json:"transaction_reference,omitempty"`
}

// PaymentStatusResponse is returned by both initiate and verify.
type PaymentStatusResponse struct {
	ID          int64                `json:"id"`
	Status      domain.PaymentStatus `json:"status"`
	ExternalRef string               `json:"external_reference"`
	ErrMessage  string               `json:"error_message"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	var resp loginResponse
	if err := c.post(ctx, "/auth/login/", payload, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return &Error{Message: "login response carried no token"}
	}
	return c.session.SetToken(resp.Token, resp.User)
}

// Logout invalidates the token server-side and clears the local session.
// The local session is cleared even when the backend call fails.
func (c *Client) Logout(ctx context.Context) error {
	errPost := c.post(ctx, "/auth/logout/", nil, nil)
	if errClear := c.session.Clear(); errClear != nil {
		return errClear
	}
	return errPost
}

// ProductByBarcode resolves a scanned barcode. A miss is ErrNotFound.
func (c *Client) ProductByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/products/barcode/"+url.PathEscape(code)+"/", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductByID fetches one product.
func (c *Client) ProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, fmt.Sprintf("/products/%d/", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchProducts runs a catalog search. The backend may answer with either a
// paginated envelope or a bare list depending on deployment.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	q := url.Values{"search": {query}}
	var raw json.RawMessage
	if err := c.get(ctx, "/products/", q, &raw); err != nil {
		return nil, err
	}
	return decodeProductList(raw)
}

// CreateProduct adds a catalog entry. The payload is forwarded untouched;
// the backend owns field validation.
func (c *Client) CreateProduct(ctx context.Context, payload json.RawMessage) (*domain.Product, error) {
	var p domain.Product
	if err := c.post(ctx, "/products/", payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProduct replaces a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload json.RawMessage) (*domain.Product, error) {
	var p domain.Product
	if err := c.put(ctx, fmt.Sprintf("/products/%d/", id), payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/products/%d/", id))
}

// LowStock lists products at or below their reorder level.
func (c *Client) LowStock(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/products/low_stock/", nil, &raw); err != nil {
		return nil, err
	}
	return decodeProductList(raw)
}

func decodeProductList(raw json.RawMessage) ([]domain.Product, error) {
	var list []domain.Product
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var page struct {
		Results []domain.Product `json:"results"`
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("decode product list: %w", err)
	}
	return page.Results, nil
}

// SalesToday returns today's sale records as reported by the backend.
func (c *Client) SalesToday(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/sales/sales/today/", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Dashboard returns the aggregated reporting dashboard payload.
func (c *Client) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/reports/dashboard/", nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// InitiatePayment starts a payment attempt on the backend.
func (c *Client) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*PaymentStatusResponse, error) {
	var resp PaymentStatusResponse
	if err := c.post(ctx, "/payments/payments/initiate/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyPayment asks the backend to re-check an in-flight payment.
func (c *Client) VerifyPayment(ctx context.Context, id int64) (*PaymentStatusResponse, error) {
	var resp PaymentStatusResponse
	if err := c.post(ctx, fmt.Sprintf("/payments/payments/%d/verify/", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateSale submits a finalized sale.
func (c *Client) CreateSale(ctx context.Context, sale domain.SaleRequest) (*domain.SaleReceipt, error) {
	var receipt domain.SaleReceipt
	if err := c.post(ctx, "/sales/sales/", sale, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
