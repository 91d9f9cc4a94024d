package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	customerID := uuid.New()

	token, expiresAt, err := issuer.Issue(customerID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future, got %v", expiresAt)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != customerID {
		t.Fatalf("customer mismatch: got %s want %s", got, customerID)
	}
}

func TestTokenIssuerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenIssuer(JWTConfig{Secret: "one", ExpiryHours: 1}).Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenIssuer(JWTConfig{Secret: "two", ExpiryHours: 1}).Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret", ExpiryHours: 1})
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenIssuerRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer(JWTConfig{Secret: "s3cret"})
	if _, err := issuer.Verify("not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
