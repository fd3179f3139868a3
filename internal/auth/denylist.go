package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:denylist:"

// RedisDenylist stores revoked token ids in Redis with a TTL equal to the
// token's remaining lifetime, so entries clean themselves up.
type RedisDenylist struct {
	client *redis.Client
}

// NewRedisDenylist wraps a go-redis client.
func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	return d.client.Set(ctx, denylistPrefix+tokenID, "1", ttl).Err()
}

func (d *RedisDenylist) Contains(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryDenylist is an in-process Denylist for tests and redis-less runs.
type MemoryDenylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryDenylist constructs an empty denylist.
func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{entries: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Add(_ context.Context, tokenID string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[tokenID] = time.Now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) Contains(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	deadline, ok := d.entries[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(deadline) {
		delete(d.entries, tokenID)
		return false, nil
	}
	return true, nil
}
