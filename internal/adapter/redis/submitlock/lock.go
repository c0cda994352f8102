// Package submitlock reserves submission slots in Redis so concurrent
// attempts for the same (test, email) short-circuit before any sandbox work.
// The Postgres unique constraint stays the authority; this guard only saves
// executor capacity and narrows the race window.
package submitlock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
)

var _ secondary.SubmissionLock = (*SubmissionLock)(nil)

const (
	keyPrefix  = "submit:"
	defaultTTL = 30 * time.Minute
)

// SubmissionLock implements the SubmissionLock interface with Redis.
type SubmissionLock struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      primary.Logger
}

// New creates a Redis-backed submission lock. A zero ttl falls back to the
// default; reservations always expire so a crashed evaluator cannot block a
// candidate forever.
func New(redisClient *redis.Client, ttl time.Duration, logger primary.Logger) *SubmissionLock {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SubmissionLock{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

func key(testID uuid.UUID, email string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, testID, email)
}

// Reserve claims the slot with SETNX semantics.
func (l *SubmissionLock) Reserve(ctx context.Context, testID uuid.UUID, email string) (bool, error) {
	ok, err := l.redisClient.SetNX(ctx, key(testID, email), time.Now().UnixNano(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve submission slot: %w", err)
	}
	return ok, nil
}

// Release frees the slot after a failed evaluation.
func (l *SubmissionLock) Release(ctx context.Context, testID uuid.UUID, email string) error {
	if err := l.redisClient.Del(ctx, key(testID, email)).Err(); err != nil {
		return fmt.Errorf("failed to release submission slot: %w", err)
	}
	return nil
}
