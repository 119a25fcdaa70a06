package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper claims one delivery slot so a restarted process or a second
// replica cannot double-send the same reminder. Claim reports whether this
// caller won the slot.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// DedupKey builds the claim key for one delivery. Exact-minute reminders
// bucket on the user's local scheduled minute. Interval water reminders are
// not tied to a single minute, so they bucket on the local day and hour;
// the durable guard there is last_water_reminder_at, the claim only covers
// the window before that write lands.
func DedupKey(userID, kind string, local time.Time, hourBucket bool) string {
	if hourBucket {
		return fmt.Sprintf("%s:%s:%s", userID, kind, local.Format("2006-01-02T15"))
	}
	return fmt.Sprintf("%s:%s:%s", userID, kind, local.Format("2006-01-02T15:04"))
}

// nopDeduper claims every key. It stands in when redis is not configured,
// trading duplicate suppression for availability.
type nopDeduper struct{}

func (nopDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return true, nil
}

// RedisDeduper implements Deduper with SETNX and a TTL slightly longer than
// the scheduler cadence. Losing redis loses only duplicate suppression, so
// callers treat a failed claim as won.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// Ensure RedisDeduper implements Deduper
var _ Deduper = (*RedisDeduper)(nil)

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Claim(ctx context.Context, key string) (bool, error) {
	return d.client.SetNX(ctx, "notify:dedup:"+key, 1, d.ttl).Result()
}
