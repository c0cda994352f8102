package secondary

import (
	"context"

	"gitlab.com/assess-2025.net/internal/domain"
)

// OwnerRepository persists the accounts that create tests.
type OwnerRepository interface {
	Create(ctx context.Context, owner *domain.Owner) error
	// FindByEmail returns (nil, nil) when no account exists for the email.
	FindByEmail(ctx context.Context, email string) (*domain.Owner, error)
}
