package auth

import (
	"testing"
	"time"
)

func newTestManager(lifetime time.Duration) *TokenManager {
	return NewTokenManager(TokenConfig{
		Secret:   "test-secret",
		Lifetime: lifetime,
		Issuer:   "rcsapi-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager(time.Minute)

	token, expiresAt, err := m.Generate("alice", 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if until := time.Until(expiresAt); until <= 0 || until > time.Minute {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject %q, want alice", claims.Subject)
	}
	if claims.AccountID != 42 {
		t.Fatalf("account id %d, want 42", claims.AccountID)
	}
}

func TestTokenExpired(t *testing.T) {
	m := newTestManager(-time.Minute)

	token, _, err := m.Generate("alice", 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := m.Validate(token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := newTestManager(time.Minute).Generate("alice", 42)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	other := NewTokenManager(TokenConfig{Secret: "other-secret", Lifetime: time.Minute})
	if _, err := other.Validate(token); err == nil {
		t.Fatalf("expected validation to fail with wrong secret")
	}
}

func TestTokenMissingClaims(t *testing.T) {
	m := newTestManager(time.Minute)

	if _, _, err := m.Generate("", 42); err == nil {
		t.Fatalf("expected Generate to reject empty subject")
	}
	if _, _, err := m.Generate("alice", 0); err == nil {
		t.Fatalf("expected Generate to reject zero account id")
	}
	if _, err := m.Validate(""); err == nil {
		t.Fatalf("expected empty token to fail validation")
	}
	if _, err := m.Validate("not.a.jwt"); err == nil {
		t.Fatalf("expected garbage token to fail validation")
	}
}
