package handlers

import (
	"context"
	"net/http"
	"strings"

	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// MiddlewareProvider resolves bearer tokens into principals. The engine only
// ever sees the resolved {id, role}; authentication lives with the identity
// collaborator.
type MiddlewareProvider struct {
	identity primary.IdentityService
}

func New(identity primary.IdentityService) *MiddlewareProvider {
	return &MiddlewareProvider{identity: identity}
}

// RequirePrincipal rejects requests without a valid bearer token and injects
// the resolved principal into the request context.
func (m *MiddlewareProvider) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		principal, err := m.identity.ResolvePrincipal(r.Context(), token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFrom extracts the resolved principal injected by RequirePrincipal.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(domain.Principal)
	return principal, ok
}
