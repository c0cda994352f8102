package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/domain"
)

// ResultRepository stores per-test results and their candidate entries.
type ResultRepository interface {
	// CreateForTest creates the empty result record for a new test.
	CreateForTest(ctx context.Context, result *domain.Result) error

	// FindByTestID retrieves a result with all its candidate entries.
	FindByTestID(ctx context.Context, testID uuid.UUID) (*domain.Result, error)

	// FindCandidate retrieves one candidate's entry for a test, or nil when
	// the candidate has not submitted yet.
	FindCandidate(ctx context.Context, testID uuid.UUID, email string) (*domain.CandidateEntry, error)

	// AppendCandidateIfAbsent atomically appends an entry unless one already
	// exists for the same email under the same test. It returns
	// errs.PersistenceConflict when a concurrent appender won the race.
	// This is the load-bearing exactly-once primitive; no other write path
	// may touch a result's candidate collection.
	AppendCandidateIfAbsent(ctx context.Context, testID uuid.UUID, entry domain.CandidateEntry) error

	// FindAllByOwner retrieves every result created by one owner.
	FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Result, error)
}
