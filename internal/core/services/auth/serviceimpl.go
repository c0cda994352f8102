package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/core/ports/secondary"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

var _ IAuthService = (*AuthService)(nil)

const tokenTTL = 24 * time.Hour

// AuthService implements the IAuthService interface.
type AuthService struct {
	ownerRepo secondary.OwnerRepository
	identity  primary.IdentityService
	logger    primary.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	ownerRepo secondary.OwnerRepository,
	identity primary.IdentityService,
	logger primary.Logger,
) *AuthService {
	return &AuthService{
		ownerRepo: ownerRepo,
		identity:  identity,
		logger:    logger,
	}
}

// Register creates an owner account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", errs.EmailRequired
	}
	if len(password) < 8 {
		return "", errs.InvalidCredentials
	}

	hash, err := s.identity.HashKey(ctx, password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	owner := &domain.Owner{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleOwner,
		CreatedAt:    time.Now(),
	}
	if err := s.ownerRepo.Create(ctx, owner); err != nil {
		return "", err
	}
	s.logger.Info("Owner registered", "ownerId", owner.ID, "email", email)

	return s.identity.IssueToken(ctx, owner.Principal(), tokenTTL)
}

// Login verifies credentials and returns a bearer token. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	owner, err := s.ownerRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if owner == nil {
		return "", errs.InvalidCredentials
	}

	valid, err := s.identity.VerifyKey(ctx, owner.PasswordHash, password)
	if err != nil || !valid {
		return "", errs.InvalidCredentials
	}

	return s.identity.IssueToken(ctx, owner.Principal(), tokenTTL)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
