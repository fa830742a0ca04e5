package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SettingsStore holds small opaque blobs keyed by name: the license record,
// the habitat configuration, session tokens and idempotency markers. Values
// are stored as raw JSON; callers own the encoding. A missing key returns
// ErrNotFound, never an empty value.
type SettingsStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// SetNX stores the value only when the key is absent and reports whether
	// it was stored. Used for idempotency markers.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

type MemorySettings struct {
	mu    sync.Mutex
	items map[string]memoryItem
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{items: make(map[string]memoryItem)}
}

func (m *MemorySettings) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok || item.expired(time.Now()) {
		delete(m.items, key)
		return nil, ErrNotFound
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (m *MemorySettings) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = newMemoryItem(value, ttl)
	return nil
}

func (m *MemorySettings) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemorySettings) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[key]; ok && !item.expired(time.Now()) {
		return false, nil
	}
	m.items[key] = newMemoryItem(value, ttl)
	return true, nil
}

func newMemoryItem(value []byte, ttl time.Duration) memoryItem {
	item := memoryItem{value: make([]byte, len(value))}
	copy(item.value, value)
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	return item
}

func (i memoryItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// RedisSettings backs the settings store with Redis so license, session and
// idempotency state survives restarts and is shared across instances.
type RedisSettings struct {
	client *redis.Client
	prefix string
}

func NewRedisSettings(client *redis.Client) *RedisSettings {
	return &RedisSettings{client: client, prefix: "habitat:settings:"}
}

func (r *RedisSettings) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisSettings) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisSettings) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisSettings) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.prefix+key, value, ttl).Result()
}
