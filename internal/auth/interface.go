package auth

import "testdeck/internal/domain/models"

// TokenVerifier validates a bearer token and returns its claims.
// Two implementations exist: the local HMAC issuer verifies its own tokens,
// and the JWKS verifier accepts tokens signed by an external identity
// provider.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*models.AccessClaims, error)
}
