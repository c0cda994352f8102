package primary

import (
	"context"
	"time"

	"gitlab.com/assess-2025.net/internal/domain"
)

// IdentityService is the boundary to the identity collaborator. The engine
// only consumes resolved principals; authentication itself happens elsewhere.
type IdentityService interface {
	// IssueToken signs a short-lived token for a principal.
	IssueToken(ctx context.Context, principal domain.Principal, ttl time.Duration) (string, error)
	// ResolvePrincipal verifies a bearer token and returns the principal it carries.
	ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error)
	// HashKey hashes a test access key for storage.
	HashKey(ctx context.Context, key string) (string, error)
	// VerifyKey compares a presented test access key against its stored hash.
	VerifyKey(ctx context.Context, keyHash string, key string) (bool, error)
}
