package secondary

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttemptTracker records when a candidate begins a test so the per-candidate
// duration budget survives reconnects and page reloads.
type AttemptTracker interface {
	// Begin records the start of an attempt and returns its remaining time.
	// Beginning the same attempt again does not reset the clock.
	Begin(ctx context.Context, testID uuid.UUID, email string, budget time.Duration) (time.Duration, error)

	// Remaining reports how much of the attempt budget is left. The second
	// return is false when no attempt is underway or the budget is spent.
	Remaining(ctx context.Context, testID uuid.UUID, email string) (time.Duration, bool, error)
}
