package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oliversimiyu/pos-system/internal/domain"
)

var ErrCacheMiss = errors.New("product not in cache")

// ProductCache caches catalog lookups between the terminal and the backend.
type ProductCache interface {
	Get(ctx context.Context, key string) (*domain.Product, error)
	Set(ctx context.Context, key string, p *domain.Product) error
	Delete(ctx context.Context, key string) error
}

// RedisCache is a ProductCache on Redis. TTLs are short: stock counts go
// stale quickly on a busy till. Jitter avoids synchronized expiry.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 60 * time.Second,
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var p domain.Product
	if err2 := json.Unmarshal(data, &p); err2 != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err2)
	}
	return &p, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, p *domain.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(15)) * time.Second
	if err := r.client.Set(ctx, cacheKey(key), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(key string) string {
	return fmt.Sprintf("product:%s", key)
}
