package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no product matches the lookup key.
	ErrNotFound = errors.New("product not found")
	// ErrSlugTaken is returned when an insert or update collides with an
	// existing slug.
	ErrSlugTaken = errors.New("slug already taken")
)

// Repository defines the interface for product data storage. All writes go
// through InTx so image reconciliation reads and replaces the same row
// state inside one transaction.
type Repository interface {
	List(ctx context.Context, slugFilter string) ([]*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	// InTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the transaction-scoped slice of the repository used by the write
// pipeline. The ForUpdate reads lock the row so a concurrent update cannot
// slip between reading the old image map and writing the new one.
type Tx interface {
	Insert(ctx context.Context, p *Product) error
	GetBySlugForUpdate(ctx context.Context, slug string) (*Product, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	Update(ctx context.Context, p *Product) error
	UpdateImages(ctx context.Context, id uuid.UUID, images ImageSet) error
	Delete(ctx context.Context, id uuid.UUID) error
}
