package crypto

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/assess-2025.net/internal/config"
	"gitlab.com/assess-2025.net/internal/core/ports/primary"
	"gitlab.com/assess-2025.net/internal/domain"
)

var _ primary.IdentityService = (*IdentityServiceImpl)(nil)

var ErrInvalidToken = fmt.Errorf("invalid token")

// IdentityServiceImpl signs and verifies bearer tokens and hashes the
// secrets the engine stores: owner passwords and test access keys. HMAC only.
type IdentityServiceImpl struct {
	HMACSecretKey string
}

func NewIdentityService(jwtConfig *config.JwtConfig) primary.IdentityService {
	return &IdentityServiceImpl{
		HMACSecretKey: jwtConfig.Secret,
	}
}

func (s IdentityServiceImpl) IssueToken(ctx context.Context, principal domain.Principal, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":  principal.ID.String(),
		"role": principal.Role,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(s.HMACSecretKey))
}

func (s IdentityServiceImpl) ResolvePrincipal(ctx context.Context, token string) (domain.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.HMACSecretKey), nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return domain.Principal{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return domain.Principal{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return domain.Principal{ID: id, Role: role}, nil
}

func (IdentityServiceImpl) HashKey(ctx context.Context, key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (IdentityServiceImpl) VerifyKey(ctx context.Context, keyHash string, key string) (bool, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
		return false, err
	}
	return true, nil
}
