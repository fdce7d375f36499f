package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

type mockBackend struct {
	mu           sync.Mutex
	product      *domain.Product
	products     []domain.Product
	err          error
	barcodeCalls int
}

func (m *mockBackend) ProductByBarcode(context.Context, string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barcodeCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockBackend) ProductByID(context.Context, int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.product, nil
}

func (m *mockBackend) SearchProducts(context.Context, string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.barcodeCalls
}

type mockCache struct {
	mu     sync.Mutex
	data   map[string]*domain.Product
	getErr error
	setErr error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]*domain.Product)}
}

func (m *mockCache) Get(_ context.Context, key string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return p, nil
}

func (m *mockCache) Set(_ context.Context, key string, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = p
	return nil
}

func (m *mockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *mockCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func TestByBarcode_CacheHitSkipsBackend(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "Soda"}
	cache := newMockCache()
	cache.data["barcode:123"] = p
	backend := &mockBackend{}

	svc := NewService(backend, cache, zap.NewNop())

	got, err := svc.ByBarcode(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 0, backend.calls())
}

func TestByBarcode_MissFetchesAndCaches(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "Soda"}
	cache := newMockCache()
	backend := &mockBackend{product: p}

	svc := NewService(backend, cache, zap.NewNop())

	got, err := svc.ByBarcode(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 1, backend.calls())

	// Cache write happens asynchronously.
	assert.Eventually(t, func() bool {
		return cache.has("barcode:123")
	}, time.Second, 10*time.Millisecond)
}

func TestByBarcode_CacheFailureFallsThrough(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "Soda"}
	cache := newMockCache()
	cache.getErr = errors.New("redis down")
	backend := &mockBackend{product: p}

	svc := NewService(backend, cache, zap.NewNop())

	got, err := svc.ByBarcode(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestByBarcode_BackendErrorPropagates(t *testing.T) {
	backend := &mockBackend{err: errors.New("backend unreachable")}
	svc := NewService(backend, newMockCache(), zap.NewNop())

	_, err := svc.ByBarcode(context.Background(), "123")
	assert.Error(t, err)
}

func TestByBarcode_ConcurrentMissesCollapse(t *testing.T) {
	p := &domain.Product{ID: 1, Name: "Soda"}
	cache := newMockCache()
	backend := &mockBackend{product: p}

	svc := NewService(backend, cache, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.ByBarcode(context.Background(), "123")
			assert.NoError(t, err)
			assert.Equal(t, p, got)
		}()
	}
	wg.Wait()

	// Singleflight collapses the simultaneous misses; allow a little
	// scheduling slack but far fewer than one call per goroutine.
	assert.LessOrEqual(t, backend.calls(), 3)
}

func TestInvalidate_DropsIDAndBarcodeKeys(t *testing.T) {
	cache := newMockCache()
	cache.data["id:1"] = &domain.Product{ID: 1}
	cache.data["barcode:12345"] = &domain.Product{ID: 1}
	cache.data["id:2"] = &domain.Product{ID: 2}

	svc := NewService(&mockBackend{}, cache, zap.NewNop())
	svc.Invalidate(context.Background(), []domain.Product{{ID: 1, Barcode: "12345"}})

	assert.False(t, cache.has("id:1"))
	assert.False(t, cache.has("barcode:12345"))
	assert.True(t, cache.has("id:2"))
}

func TestSearch_BypassesCache(t *testing.T) {
	backend := &mockBackend{products: []domain.Product{{ID: 1}, {ID: 2}}}
	svc := NewService(backend, newMockCache(), zap.NewNop())

	products, err := svc.Search(context.Background(), "soda")
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
