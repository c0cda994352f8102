package auth

import (
	"context"
	"errors"
	"testing"

	"gitlab.com/assess-2025.net/internal/adapter/crypto"
	"gitlab.com/assess-2025.net/internal/adapter/logging"
	"gitlab.com/assess-2025.net/internal/config"
	"gitlab.com/assess-2025.net/internal/domain"
	"gitlab.com/assess-2025.net/internal/static/errs"
)

type fakeOwnerRepo struct {
	owners map[string]*domain.Owner
}

func newFakeOwnerRepo() *fakeOwnerRepo {
	return &fakeOwnerRepo{owners: map[string]*domain.Owner{}}
}

func (f *fakeOwnerRepo) Create(ctx context.Context, owner *domain.Owner) error {
	if _, ok := f.owners[owner.Email]; ok {
		return errs.EmailTaken
	}
	f.owners[owner.Email] = owner
	return nil
}

func (f *fakeOwnerRepo) FindByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	return f.owners[email], nil
}

func newService(t *testing.T) (*AuthService, *fakeOwnerRepo) {
	t.Helper()
	repo := newFakeOwnerRepo()
	identity := crypto.NewIdentityService(&config.JwtConfig{Secret: "test-secret"})
	return NewAuthService(repo, identity, logging.NewDevelopmentLogger()), repo
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	svc, repo := newService(t)

	token, err := svc.Register(context.Background(), "Ada", "Ada@Example.com", "correct horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Fatal("Register() returned an empty token")
	}

	owner := repo.owners["ada@example.com"]
	if owner == nil {
		t.Fatal("account not stored under the normalized email")
	}
	if owner.PasswordHash == "correct horse" {
		t.Error("password stored in plaintext")
	}
	if owner.Role != domain.RoleOwner {
		t.Errorf("role = %q, want %q", owner.Role, domain.RoleOwner)
	}

	token, err = svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("Login() returned an empty token")
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	if _, err := svc.Register(context.Background(), "Ada", "  ", "correct horse"); !errors.Is(err, errs.EmailRequired) {
		t.Errorf("Register() without email error = %v, want EmailRequired", err)
	}
	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "short"); !errors.Is(err, errs.InvalidCredentials) {
		t.Errorf("Register() with a short password error = %v, want InvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(context.Background(), "Imposter", "ADA@example.com", "battery staple"); !errors.Is(err, errs.EmailTaken) {
		t.Errorf("second Register() error = %v, want EmailTaken", err)
	}
}

func TestLoginFailures(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	if _, err := svc.Register(context.Background(), "Ada", "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.Login(context.Background(), "ada@example.com", "wrong password"); !errors.Is(err, errs.InvalidCredentials) {
		t.Errorf("Login() with a wrong password error = %v, want InvalidCredentials", err)
	}
	// A missing account reads the same as a wrong password.
	if _, err := svc.Login(context.Background(), "nobody@example.com", "correct horse"); !errors.Is(err, errs.InvalidCredentials) {
		t.Errorf("Login() for a missing account error = %v, want InvalidCredentials", err)
	}
}
