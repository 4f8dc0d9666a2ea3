package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Idempotency keys outlive any reasonable client retry window.
const dedupTTL = 24 * time.Hour

// GenerationDedup provides idempotency checks for invoice generation
// requests, backed by Redis. Key format: invgen:<idempotency_key>
type GenerationDedup struct {
	client *redis.Client
}

// NewGenerationDedup creates a GenerationDedup wrapping the given Redis client.
func NewGenerationDedup(client *redis.Client) *GenerationDedup {
	return &GenerationDedup{client: client}
}

// IsDuplicate reports whether a generation request with this key has
// already been processed.
func (d *GenerationDedup) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a generation request with this key has been
// processed (expires after dedupTTL).
func (d *GenerationDedup) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.key(key), "1", dedupTTL).Err()
}

func (d *GenerationDedup) key(key string) string {
	return "invgen:" + key
}
