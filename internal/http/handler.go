// Package http is the terminal's driving surface: the JSON API the till UI
// talks to.
package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/checkout"
	"github.com/oliversimiyu/pos-system/internal/domain"
	"github.com/oliversimiyu/pos-system/internal/payment"
	"github.com/oliversimiyu/pos-system/internal/sale"
)

// Backend is everything the facade needs from the API client beyond what the
// checkout components already wrap.
type Backend interface {
	payment.Gateway
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	CreateProduct(ctx context.Context, payload json.RawMessage) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload json.RawMessage) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	LowStock(ctx context.Context) ([]domain.Product, error)
	SalesToday(ctx context.Context) (json.RawMessage, error)
	Dashboard(ctx context.Context) (json.RawMessage, error)
}

// Handler wires one terminal session: cart, payment flow and finalization.
// It also retains the last confirmed payment until a sale submission
// succeeds, so finalize can be retried without re-collecting payment.
type Handler struct {
	orchestrator *checkout.Orchestrator
	flow         *payment.Flow
	finalizer    *sale.Finalizer
	backend      Backend
	validate     *validator.Validate
	log          *zap.Logger

	finalizeTimeout time.Duration

	mu            sync.Mutex
	pendingResult *payment.Result
	lastReceipt   *domain.SaleReceipt
	finalizeErr   error
}

// NewHandler builds the facade. The payment flow is owned here so its
// completion callback can feed the finalizer: confirmed payment -> sale
// submission -> cart reset.
func NewHandler(orch *checkout.Orchestrator, fin *sale.Finalizer, backend Backend, pollInterval, pollTimeout time.Duration, log *zap.Logger) *Handler {
	h := &Handler{
		orchestrator:    orch,
		finalizer:       fin,
		backend:         backend,
		validate:        validator.New(),
		log:             log,
		finalizeTimeout: 30 * time.Second,
	}
	h.flow = payment.NewFlow(backend, pollInterval, pollTimeout, h.paymentCompleted, log)
	return h
}

// Routes registers the till API.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/scan", h.Scan)
		r.Post("/items", h.AddItem)
		r.Put("/items/{productID}", h.UpdateQuantity)
		r.Delete("/items/{productID}", h.RemoveItem)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.SearchProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/low_stock", h.LowStock)
		r.Put("/{productID}", h.UpdateProduct)
		r.Delete("/{productID}", h.DeleteProduct)
	})
	r.Post("/checkout", h.BeginCheckout)
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.SubmitPayment)
		r.Get("/current", h.PaymentState)
		r.Delete("/current", h.CancelPayment)
	})
	r.Route("/sales", func(r chi.Router) {
		r.Post("/", h.RetryFinalize)
		r.Post("/park", h.ParkSale)
		r.Get("/today", h.SalesToday)
	})
	r.Get("/reports/dashboard", h.Dashboard)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
}

// paymentCompleted runs once per confirmed attempt. A failed finalization
// keeps the payment result so the operator can retry or park the sale; the
// cart is untouched in that case.
func (h *Handler) paymentCompleted(res payment.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), h.finalizeTimeout)
	defer cancel()

	receipt, err := h.finalizer.Finalize(ctx, h.orchestrator.Cart(), res)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.pendingResult = &res
		h.finalizeErr = err
		h.log.Error("sale finalization failed, payment retained for retry",
			zap.String("reference", res.Reference),
			zap.Error(err),
		)
		return
	}
	h.pendingResult = nil
	h.finalizeErr = nil
	h.lastReceipt = receipt
}

func (h *Handler) checkoutSnapshot() (pending *payment.Result, receipt *domain.SaleReceipt, finErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pendingResult, h.lastReceipt, h.finalizeErr
}
