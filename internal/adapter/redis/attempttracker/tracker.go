// Package attempttracker keeps each candidate's attempt clock in Redis. The
// key's TTL is the remaining budget, so the clock keeps running even if the
// candidate disconnects and the entry cleans itself up when time is spent.
package attempttracker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
)

var _ secondary.AttemptTracker = (*AttemptTracker)(nil)

const keyPrefix = "attempt:"

// AttemptTracker implements the AttemptTracker interface with Redis.
type AttemptTracker struct {
	redisClient *redis.Client
	logger      primary.Logger
}

// New creates a Redis-backed attempt tracker.
func New(redisClient *redis.Client, logger primary.Logger) *AttemptTracker {
	return &AttemptTracker{
		redisClient: redisClient,
		logger:      logger,
	}
}

func key(testID uuid.UUID, email string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, testID, email)
}

// Begin claims the attempt with SETNX semantics. When the attempt already
// exists the stored clock wins and its remaining TTL is returned, so
// restarting the test page never grants extra time.
func (t *AttemptTracker) Begin(ctx context.Context, testID uuid.UUID, email string, budget time.Duration) (time.Duration, error) {
	started, err := t.redisClient.SetNX(ctx, key(testID, email), time.Now().UnixNano(), budget).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to begin attempt: %w", err)
	}
	if started {
		return budget, nil
	}

	remaining, ok, err := t.Remaining(ctx, testID, email)
	if err != nil {
		return 0, err
	}
	if !ok {
		// The attempt expired between SETNX and PTTL. Treat it as spent.
		return 0, nil
	}
	return remaining, nil
}

// Remaining reads the attempt's TTL.
func (t *AttemptTracker) Remaining(ctx context.Context, testID uuid.UUID, email string) (time.Duration, bool, error) {
	ttl, err := t.redisClient.PTTL(ctx, key(testID, email)).Result()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read attempt clock: %w", err)
	}
	if ttl < 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}
