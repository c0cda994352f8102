package secondary

import (
	"context"

	"github.com/google/uuid"
)

// SubmissionLock reserves the (test, candidate email) submission slot before
// any evaluation work starts. A reservation that is never released expires on
// its own; the persistent uniqueness constraint remains the authority.
type SubmissionLock interface {
	// Reserve claims the slot. It returns false when another in-flight
	// submission already holds it.
	Reserve(ctx context.Context, testID uuid.UUID, email string) (bool, error)

	// Release frees a reservation after a failed evaluation so the
	// candidate may retry.
	Release(ctx context.Context, testID uuid.UUID, email string) error
}
