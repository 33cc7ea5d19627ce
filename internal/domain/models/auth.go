package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the claims carried by an access token. Subject is the
// user ID.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}
