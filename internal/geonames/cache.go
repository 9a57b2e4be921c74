package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eykd/rorv/internal/domain"
)

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu     sync.Mutex
	places map[string]domain.Place
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{places: make(map[string]domain.Place)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, id string) (domain.Place, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.places[id]
	return p, ok, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, id string, place domain.Place) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.places[id] = place
	return nil
}

const redisKeyPrefix = "rorv:geonames:"

// RedisCache shares lookups between runs through Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the Redis server at rawURL. Entries expire
// after ttl; zero keeps them forever.
func NewRedisCache(rawURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &RedisCache{client: redis.NewClient(opts), ttl: ttl}, nil
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, id string) (domain.Place, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Place{}, false, nil
	}
	if err != nil {
		return domain.Place{}, false, err
	}
	var p domain.Place
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Place{}, false, fmt.Errorf("decoding cached place %s: %w", id, err)
	}
	return p, true, nil
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, id string, place domain.Place) error {
	raw, err := json.Marshal(place)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKeyPrefix+id, raw, r.ttl).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
