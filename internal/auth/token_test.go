package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenManager_IssueResolve(t *testing.T) {
	m, err := NewTokenManager("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	subject := uuid.New()
	token, err := m.Issue(subject, 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	resolved, err := m.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved != subject {
		t.Fatalf("resolved subject = %s, want %s", resolved, subject)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	// Отрицательный TTL по умолчанию: токен рождается просроченным.
	m, err := NewTokenManager("test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	token, err := m.Issue(uuid.New(), 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := m.Resolve(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	issuer, err := NewTokenManager("secret-one", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}
	verifier, err := NewTokenManager("secret-two", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	token, err := issuer.Issue(uuid.New(), 0)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := verifier.Resolve(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	m, err := NewTokenManager("test-secret", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager error: %v", err)
	}

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Resolve(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestTokenManager_EmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Minute); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
