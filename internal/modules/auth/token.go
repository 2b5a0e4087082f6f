package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTokenNotFound is returned when a token record no longer exists,
// i.e. it was revoked.
var ErrTokenNotFound = errors.New("token not found")

// Token is the stored record of an issued access token. The signed JWT
// carries the record's ID; deleting the record revokes the token.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
}

// TokenRepository defines the interface for access-token storage.
type TokenRepository interface {
	Insert(ctx context.Context, t *Token) error
	Get(ctx context.Context, id uuid.UUID) (*Token, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
