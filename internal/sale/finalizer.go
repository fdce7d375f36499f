// Package sale turns a paid cart into a backend sale record, with a local
// outbox for tills that lose the backend mid-shift.
package sale

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/cart"
	"github.com/oliversimiyu/pos-system/internal/domain"
	"github.com/oliversimiyu/pos-system/internal/payment"
)

// ErrNothingToFinalize means the cart was already empty; there is no sale to
// record.
var ErrNothingToFinalize = errors.New("nothing to finalize")

// Backend is the slice of the API client the finalizer needs.
type Backend interface {
	CreateSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleReceipt, error)
}

// CacheInvalidator drops cached catalog entries whose stock the sale just
// changed. May be nil.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, products []domain.Product)
}

type Finalizer struct {
	backend Backend
	outbox  *Outbox
	cache   CacheInvalidator
	log     *zap.Logger
}

func NewFinalizer(backend Backend, outbox *Outbox, cache CacheInvalidator, log *zap.Logger) *Finalizer {
	return &Finalizer{
		backend: backend,
		outbox:  outbox,
		cache:   cache,
		log:     log,
	}
}

// Finalize submits the current cart plus the confirmed payment as a sale.
// On success the cart is cleared and the backend receipt returned. On
// failure the cart is left exactly as it was, so finalize can be retried
// without re-collecting payment.
func (f *Finalizer) Finalize(ctx context.Context, c *cart.Cart, res payment.Result) (*domain.SaleReceipt, error) {
	req := buildRequest(c, res)
	if len(req.Items) == 0 {
		return nil, ErrNothingToFinalize
	}

	receipt, err := f.backend.CreateSale(ctx, req)
	if err != nil {
		return nil, err
	}

	lines := c.Lines()
	c.Clear()
	if f.cache != nil {
		products := make([]domain.Product, 0, len(lines))
		for _, line := range lines {
			products = append(products, line.Product)
		}
		f.cache.Invalidate(ctx, products)
	}
	f.log.Info("sale finalized",
		zap.String("receipt_number", receipt.ReceiptNumber),
		zap.String("method", string(res.Method)),
	)
	return receipt, nil
}

// Park queues the sale in the local outbox and clears the cart. This is an
// explicit operator action for when the backend is unreachable; the
// resubmitter delivers it later under the same client reference.
func (f *Finalizer) Park(c *cart.Cart, res payment.Result) (string, error) {
	req := buildRequest(c, res)
	if len(req.Items) == 0 {
		return "", ErrNothingToFinalize
	}

	if req.ClientRef == "" {
		req.ClientRef = uuid.NewString()
	}
	entry := PendingSale{
		ID:       req.ClientRef,
		Sale:     req,
		QueuedAt: time.Now().UTC(),
	}
	if err := f.outbox.Append(entry); err != nil {
		return "", err
	}

	c.Clear()
	f.log.Warn("sale parked for resubmission", zap.String("client_ref", entry.ID))
	return entry.ID, nil
}

func buildRequest(c *cart.Cart, res payment.Result) domain.SaleRequest {
	return domain.SaleRequest{
		Items:         c.Items(),
		PaymentMethod: res.Method,
		AmountPaid:    res.Amount,
		ClientRef:     res.Reference,
	}
}
