package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cinematalkiez/blackhole/pkg/auth"
)

func TestTokenIssueValidatesScope(t *testing.T) {
	_, rdb := setupRedis(t)
	svc := NewTokenService(auth.NewJWTManager("secret", time.Hour), rdb)

	if _, err := svc.Issue("bot", "admin"); !errors.Is(err, ErrUnknownScope) {
		t.Fatalf("err = %v, want ErrUnknownScope", err)
	}
	if _, err := svc.Issue("", auth.ScopeVerify); err == nil {
		t.Fatal("expected error for empty subject")
	}

	token, err := svc.Issue("bot", auth.ScopeVerify)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := auth.NewJWTManager("secret", time.Hour).ValidateServiceToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "bot" || claims.Scope != auth.ScopeVerify {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRevoke(t *testing.T) {
	mr, rdb := setupRedis(t)
	svc := NewTokenService(auth.NewJWTManager("secret", time.Hour), rdb)
	ctx := context.Background()

	token, err := svc.Issue("bot", auth.ScopeCatalog)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	revoked, err := svc.IsRevoked(ctx, token)
	if err != nil || revoked {
		t.Fatalf("fresh token revoked=%v err=%v", revoked, err)
	}

	if err := svc.Revoke(ctx, token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = svc.IsRevoked(ctx, token)
	if err != nil || !revoked {
		t.Fatalf("revoked=%v err=%v", revoked, err)
	}

	ttl := mr.TTL("blacklist:" + token)
	if ttl <= 0 || ttl > time.Hour {
		t.Fatalf("blacklist ttl = %v", ttl)
	}
}

func TestTokenRevokeRejectsGarbage(t *testing.T) {
	_, rdb := setupRedis(t)
	svc := NewTokenService(auth.NewJWTManager("secret", time.Hour), rdb)

	if err := svc.Revoke(context.Background(), "not-a-token"); err == nil {
		t.Fatal("expected error")
	}
}
