package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	p := &domain.Product{ID: 1, Name: "Soda", Price: 50, StockQuantity: 12}
	require.NoError(t, cache.Set(ctx, "barcode:12345", p))

	got, err := cache.Get(ctx, "barcode:12345")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestRedisCache_MissingKey(t *testing.T) {
	cache, _ := newTestCache(t)

	_, err := cache.Get(context.Background(), "barcode:nope")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	p := &domain.Product{ID: 2, Name: "Bread"}
	require.NoError(t, cache.Set(ctx, "id:2", p))
	require.NoError(t, cache.Delete(ctx, "id:2"))

	_, err := cache.Get(ctx, "id:2")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "barcode:777", &domain.Product{ID: 7}))

	// Base TTL plus maximum jitter.
	mr.FastForward(cache.baseTTL * 2)

	_, err := cache.Get(ctx, "barcode:777")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
