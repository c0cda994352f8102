package auth

import (
	"context"
)

// IAuthService handles owner account registration and login. Candidates do
// not log in; they present a test access key instead.
type IAuthService interface {
	// Register creates an owner account and returns a signed bearer token.
	Register(ctx context.Context, name, email, password string) (string, error)

	// Login verifies credentials and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, error)
}
