package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type tokenPostgresRepository struct {
	db *sql.DB
}

// NewTokenPostgresRepository creates a new PostgreSQL access-token repository.
func NewTokenPostgresRepository(db *sql.DB) TokenRepository {
	return &tokenPostgresRepository{db: db}
}

func (r *tokenPostgresRepository) Insert(ctx context.Context, t *Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_tokens (id, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		t.ID, t.UserID, t.CreatedAt, t.ExpiresAt)
	return err
}

func (r *tokenPostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Token, error) {
	t := &Token{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, expires_at
		FROM access_tokens
		WHERE id = $1`, id).
		Scan(&t.ID, &t.UserID, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *tokenPostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE id = $1`, id)
	return err
}
