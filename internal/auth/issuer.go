package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"testdeck/internal/domain"
	"testdeck/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer issues and verifies HS256 access tokens signed with a local
// secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenIssuer creates a token issuer. The secret must be non-empty.
func NewTokenIssuer(secret, issuer string, ttl time.Duration, logger *slog.Logger) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("auth secret cannot be empty")
	}

	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// IssueToken creates a signed access token for the given user.
func (i *TokenIssuer) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyToken validates a locally issued token and extracts its claims.
func (i *TokenIssuer) VerifyToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks - only HS256 is issued locally
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		i.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		i.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}
