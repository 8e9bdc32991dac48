package service

import (
	"context"
	"errors"
	"time"

	"github.com/cinematalkiez/blackhole/pkg/auth"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

var ErrUnknownScope = errors.New("unknown token scope")

// TokenService issues and revokes service tokens for external integrations
type TokenService struct {
	jwtManager *auth.JWTManager
	rdb        *redis.Client
}

func NewTokenService(jwtManager *auth.JWTManager, rdb *redis.Client) *TokenService {
	return &TokenService{jwtManager: jwtManager, rdb: rdb}
}

// Issue creates a token for subject limited to scope
func (s *TokenService) Issue(subject, scope string) (string, error) {
	switch scope {
	case auth.ScopeVerify, auth.ScopeCatalog:
	default:
		return "", ErrUnknownScope
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	return s.jwtManager.GenerateServiceToken(subject, scope)
}

// Revoke blacklists a token for the rest of its lifetime. Expired tokens
// need no entry.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.ValidateServiceToken(tokenString)
	if err != nil {
		return err
	}

	expiresIn := time.Until(claims.ExpiresAt.Time)
	if expiresIn <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistPrefix+tokenString, "revoked", expiresIn).Err()
}

// IsRevoked checks the blacklist
func (s *TokenService) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistPrefix+tokenString).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
