package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/domain"
)

// IAssessmentService manages the test lifecycle and owner-facing result
// access around the evaluation engine.
type IAssessmentService interface {
	// CreateTest persists a test together with its empty result record and
	// returns the one-time access key the owner distributes to candidates.
	CreateTest(ctx context.Context, principal domain.Principal, test *domain.Test) (string, error)

	// StartTest returns the test for a candidate attempt, enforcing the
	// [StartTime, EndTime) window and the access key, and starts the
	// candidate's attempt clock. It returns the attempt's remaining time.
	StartTest(ctx context.Context, testID uuid.UUID, accessKey, email string, at time.Time) (*domain.Test, time.Duration, error)

	// DeleteTest soft-deletes a test. Only its owner or an admin may.
	DeleteTest(ctx context.Context, principal domain.Principal, testID uuid.UUID) error

	// GetResult returns a test's result. Only its owner or an admin may.
	GetResult(ctx context.Context, principal domain.Principal, testID uuid.UUID) (*domain.Result, error)

	// ListMyResults returns every result owned by the principal.
	ListMyResults(ctx context.Context, principal domain.Principal) ([]*domain.Result, error)
}
