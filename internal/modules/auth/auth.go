package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned for a bad email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenInvalid is returned for a malformed, expired or revoked token.
	ErrTokenInvalid = errors.New("token invalid or revoked")
)

// Principal identifies the authenticated caller of a write operation.
type Principal struct {
	UserID  uuid.UUID
	TokenID uuid.UUID
	Name    string
	Email   string
}

// Credentials is the login response body.
type Credentials struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*Credentials, error)
	// Authenticate resolves a bearer token into the Principal it was
	// issued to, rejecting tokens that were revoked or have expired.
	Authenticate(ctx context.Context, bearer string) (*Principal, error)
	// Logout revokes a single issued token.
	Logout(ctx context.Context, tokenID uuid.UUID) error
}
