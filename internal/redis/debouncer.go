package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// Connect creates a go-redis client from a URL (e.g., "redis://localhost:6379")
// and verifies the connection.
func Connect(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// VoteDebouncer suppresses rapid repeat votes by the same user on the same
// proposal. SetNX makes the check atomic across server instances.
type VoteDebouncer struct {
	rdb    *goredis.Client
	window time.Duration
}

func NewVoteDebouncer(rdb *goredis.Client, window time.Duration) *VoteDebouncer {
	return &VoteDebouncer{rdb: rdb, window: window}
}

// Allow reports whether this vote may proceed. The first call within the
// window wins; later calls are denied until the key expires.
func (d *VoteDebouncer) Allow(ctx context.Context, proposalID, userID uuid.UUID) (bool, error) {
	key := debounceKey(proposalID, userID)
	set, err := d.rdb.SetNX(ctx, key, "1", d.window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check vote debounce: %w", err)
	}
	return set, nil
}

func debounceKey(proposalID, userID uuid.UUID) string {
	return "vote_debounce:" + proposalID.String() + ":" + userID.String()
}
