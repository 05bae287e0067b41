// ABOUTME: Unit tests for session token issuing and verification
// ABOUTME: Tests valid tokens, tampered tokens, wrong secrets, and expired tokens

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-key-for-session-signing")

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner(testSecret)

	token, err := signer.Issue("sess-123", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	got, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != "sess-123" {
		t.Errorf("Verify() = %q, want %q", got, "sess-123")
	}
}

func TestSigner_InvalidToken(t *testing.T) {
	signer := NewSigner(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not-a-jwt-token"},
		{name: "malformed JWT", token: "header.payload.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestSigner_WrongSecret(t *testing.T) {
	token, err := NewSigner([]byte("other-secret")).Issue("sess-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := NewSigner(testSecret).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_Expired(t *testing.T) {
	signer := NewSigner(testSecret)

	token, err := signer.Issue("sess-1", -time.Minute)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := signer.Verify(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestSigner_WrongIssuer(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "sess-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	if _, err := NewSigner(testSecret).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestSigner_IssueRequiresSession(t *testing.T) {
	if _, err := NewSigner(testSecret).Issue("", time.Hour); !errors.Is(err, ErrMissingClaim) {
		t.Errorf("Issue() error = %v, want ErrMissingClaim", err)
	}
}

func TestRandomSecret(t *testing.T) {
	a, err := RandomSecret(32)
	if err != nil {
		t.Fatalf("RandomSecret() error = %v", err)
	}
	b, _ := RandomSecret(32)
	if len(a) != 32 {
		t.Errorf("len = %d, want 32", len(a))
	}
	if string(a) == string(b) {
		t.Error("two random secrets are equal")
	}
}
