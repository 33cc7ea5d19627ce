package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"testdeck/internal/domain"
	"testdeck/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "testdeck", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewTokenIssuer() failed: %v", err)
	}

	user := &models.User{ID: "user-1", Email: "dev@example.com"}
	token, err := issuer.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	claims, err := issuer.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Email != "dev@example.com" {
		t.Fatalf("email = %q, want dev@example.com", claims.Email)
	}
}

func TestTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("", "testdeck", time.Hour, testLogger()); err == nil {
		t.Fatal("NewTokenIssuer with empty secret should fail")
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", "testdeck", time.Hour, testLogger())
	if err != nil {
		t.Fatalf("NewTokenIssuer() failed: %v", err)
	}

	user := &models.User{ID: "user-1", Email: "dev@example.com"}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := issuer.VerifyToken("not.a.token"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("error = %v, want unauthorized", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenIssuer("other-secret", "testdeck", time.Hour, testLogger())
		if err != nil {
			t.Fatalf("NewTokenIssuer() failed: %v", err)
		}
		token, err := other.IssueToken(user)
		if err != nil {
			t.Fatalf("IssueToken() failed: %v", err)
		}
		if _, err := issuer.VerifyToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("error = %v, want unauthorized", err)
		}
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewTokenIssuer("test-secret", "someone-else", time.Hour, testLogger())
		if err != nil {
			t.Fatalf("NewTokenIssuer() failed: %v", err)
		}
		token, err := other.IssueToken(user)
		if err != nil {
			t.Fatalf("IssueToken() failed: %v", err)
		}
		if _, err := issuer.VerifyToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("error = %v, want unauthorized", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenIssuer("test-secret", "testdeck", -time.Minute, testLogger())
		if err != nil {
			t.Fatalf("NewTokenIssuer() failed: %v", err)
		}
		token, err := expired.IssueToken(user)
		if err != nil {
			t.Fatalf("IssueToken() failed: %v", err)
		}
		if _, err := issuer.VerifyToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("error = %v, want unauthorized", err)
		}
	})
}
