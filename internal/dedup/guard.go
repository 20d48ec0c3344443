package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard is the long-horizon dedup check, keyed by platform, owner and post
// id and persisted in Redis so it survives restarts. SetNX gives atomic
// check-and-set semantics: of two concurrent deliveries of the same post,
// exactly one observes first-seen.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Guard{rdb: rdb, ttl: ttl}
}

// PostKey builds the guard key for a wall post.
func PostKey(ownerID, postID int64) string {
	return fmt.Sprintf("post:vk:%d:%d", ownerID, postID)
}

// FirstSeen marks the key and reports whether this call was the first to do
// so within the TTL window. When Redis is unreachable the guard fails open:
// an occasional duplicate delivery beats silently dropping a real event.
func (g *Guard) FirstSeen(ctx context.Context, key string) bool {
	acquired, err := g.rdb.SetNX(ctx, key, "seen", g.ttl).Result()
	if err != nil {
		slog.Warn("dedup guard unavailable, failing open", "key", key, "error", err)
		return true
	}
	return acquired
}
