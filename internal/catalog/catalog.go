// Package catalog resolves products for the checkout screen, caching hot
// barcode lookups so a till rescanning the same items does not hammer the
// backend.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

// Backend is the slice of the API client the catalog needs.
type Backend interface {
	ProductByBarcode(ctx context.Context, code string) (*domain.Product, error)
	ProductByID(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

type Service struct {
	backend Backend
	cache   ProductCache
	log     *zap.Logger
	sfg     singleflight.Group // Collapses concurrent misses for one key
}

func NewService(backend Backend, cache ProductCache, log *zap.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		log:     log,
	}
}

// ByBarcode resolves a scanned barcode, serving from cache when possible.
// Cache failures are logged and bypassed; they never fail the lookup.
func (s *Service) ByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return s.lookup(ctx, "barcode:"+code, func() (*domain.Product, error) {
		return s.backend.ProductByBarcode(ctx, code)
	})
}

// ByID resolves a product selected from search results.
func (s *Service) ByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.lookup(ctx, fmt.Sprintf("id:%d", id), func() (*domain.Product, error) {
		return s.backend.ProductByID(ctx, id)
	})
}

// Search queries the backend directly; result sets are not cached.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.backend.SearchProducts(ctx, query)
}

// Invalidate drops cached entries for products whose backend state changed
// (sold, edited, deleted). Without this a rescan inside the TTL would see a
// pre-sale stock count. Failures are logged; the entry ages out regardless.
func (s *Service) Invalidate(ctx context.Context, products []domain.Product) {
	for _, p := range products {
		keys := []string{fmt.Sprintf("id:%d", p.ID)}
		if p.Barcode != "" {
			keys = append(keys, "barcode:"+p.Barcode)
		}
		for _, key := range keys {
			if err := s.cache.Delete(ctx, key); err != nil {
				s.log.Warn("product cache invalidation failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}

func (s *Service) lookup(ctx context.Context, key string, fetch func() (*domain.Product, error)) (*domain.Product, error) {
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		p, errGet := s.cache.Get(ctx, key)
		if errGet == nil {
			return p, nil
		}
		if !errors.Is(errGet, ErrCacheMiss) {
			s.log.Warn("product cache get failed", zap.String("key", key), zap.Error(errGet))
		}

		p, errFetch := fetch()
		if errFetch != nil {
			return nil, errFetch
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), key, p); errSet != nil {
				s.log.Warn("product cache set failed", zap.String("key", key), zap.Error(errSet))
			}
		}()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}
