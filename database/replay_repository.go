package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayRepository records processed Stripe event ids in Redis so that
// duplicate detection survives restarts and is shared between instances.
// Keys expire after ttl instead of being evicted by count.
type ReplayRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewReplayRepository(client *redis.Client, ttl time.Duration) *ReplayRepository {
	return &ReplayRepository{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *ReplayRepository) getKey(eventID string) string {
	return fmt.Sprintf("webhook:event:%s", eventID)
}

func (r *ReplayRepository) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.getKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkProcessed uses SET NX, so only one concurrent caller wins for an id.
func (r *ReplayRepository) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	processedAt := r.now().UTC().Format(time.RFC3339)
	return r.client.SetNX(ctx, r.getKey(eventID), processedAt, r.ttl).Result()
}
