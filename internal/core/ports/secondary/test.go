package secondary

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/domain"
)

// TestRepository stores assessments. Reads only ever see active tests;
// deletion is a soft deactivation.
type TestRepository interface {
	// Create persists a test with its questions and test cases.
	Create(ctx context.Context, test *domain.Test) error

	// FindByID retrieves an active test with questions and test cases in
	// authored order. Returns errs.TestNotFound when absent or inactive.
	FindByID(ctx context.Context, testID uuid.UUID) (*domain.Test, error)

	// FindQuestion retrieves one question of a test with its test cases.
	FindQuestion(ctx context.Context, testID, questionID uuid.UUID) (*domain.Question, error)

	// Deactivate soft-deletes a test.
	Deactivate(ctx context.Context, testID uuid.UUID) error

	// DeactivateExpired soft-deletes every active test whose window closed
	// before the cutoff. Returns how many tests it retired.
	DeactivateExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
