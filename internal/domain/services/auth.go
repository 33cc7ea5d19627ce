package services

import (
	"context"

	"testdeck/internal/domain/models"
)

// AuthService handles registration, login and user resolution
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	// Login verifies credentials and issues an access token
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
	// GetUser resolves a user for audit attribution
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// RegisterRequest represents an account creation request
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// LoginRequest represents a credential check request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and its subject
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
