// Package checkout coordinates product lookup, cart mutation and the
// transition into payment for one terminal session.
package checkout

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/api"
	"github.com/oliversimiyu/pos-system/internal/cart"
	"github.com/oliversimiyu/pos-system/internal/domain"
)

var (
	// ErrEmptyCart blocks checkout with nothing to sell.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductNotFound is a non-fatal scan miss; the cashier rescans or
	// searches manually.
	ErrProductNotFound = errors.New("product not found")
)

// Catalog resolves products for the cashier.
type Catalog interface {
	ByBarcode(ctx context.Context, code string) (*domain.Product, error)
	ByID(ctx context.Context, id int64) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Invalidate(ctx context.Context, products []domain.Product)
}

type Orchestrator struct {
	catalog Catalog
	cart    *cart.Cart
	log     *zap.Logger
}

func NewOrchestrator(catalog Catalog, c *cart.Cart, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		catalog: catalog,
		cart:    c,
		log:     log,
	}
}

// Cart exposes the session cart for the facade layer.
func (o *Orchestrator) Cart() *cart.Cart {
	return o.cart
}

// LookupByBarcode resolves one scanned code and adds the product to the
// cart. A backend miss is reported as ErrProductNotFound; stock errors come
// back unchanged from the cart.
func (o *Orchestrator) LookupByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	p, err := o.catalog.ByBarcode(ctx, code)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if errAdd := o.cart.Add(*p); errAdd != nil {
		return nil, errAdd
	}
	o.log.Info("scanned product added",
		zap.Int64("product_id", p.ID),
		zap.String("barcode", code),
	)
	return p, nil
}

// SearchProducts returns candidates for manual selection.
func (o *Orchestrator) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	return o.catalog.Search(ctx, query)
}

// InvalidateProducts drops cached catalog entries after a management change.
func (o *Orchestrator) InvalidateProducts(ctx context.Context, products []domain.Product) {
	o.catalog.Invalidate(ctx, products)
}

// AddProduct adds a product chosen from search results.
func (o *Orchestrator) AddProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := o.catalog.ByID(ctx, productID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if errAdd := o.cart.Add(*p); errAdd != nil {
		return nil, errAdd
	}
	return p, nil
}

// BeginCheckout validates the cart and returns the amount due. The caller
// hands that amount to the payment flow.
func (o *Orchestrator) BeginCheckout() (float64, error) {
	if o.cart.Len() == 0 {
		return 0, ErrEmptyCart
	}
	return o.cart.Total(), nil
}
