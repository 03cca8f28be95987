package webhooks

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const deliveryKeyPrefix = "webhook:delivery:"

// Deduper remembers webhook delivery IDs in Redis so retried deliveries
// don't trigger repeat work. Without Redis it degrades to "never seen",
// which is safe because processing is idempotent cache invalidation.
type Deduper struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDeduper(rdb *redis.Client, ttl time.Duration) *Deduper {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{rdb: rdb, ttl: ttl}
}

// Seen marks id as delivered and reports whether it had been seen before.
func (d *Deduper) Seen(ctx context.Context, id string) bool {
	if d == nil || d.rdb == nil {
		return false
	}

	fresh, err := d.rdb.SetNX(ctx, deliveryKeyPrefix+id, 1, d.ttl).Result()
	if err != nil {
		log.Printf("[webhooks] delivery dedup unavailable: %v", err)
		return false
	}
	return !fresh
}
