package product

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `id, slug, name, header, details, footer, images, created_by, updated_by, created_at, updated_at`

type postgresRepo struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(db *sql.DB, log *logrus.Logger) Repository {
	return &postgresRepo{db: db, log: log}
}

func (r *postgresRepo) List(ctx context.Context, slugFilter string) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	if slugFilter != "" {
		query += ` WHERE slug LIKE '%' || $1 || '%'`
		args = append(args, slugFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&postgresTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.WithError(rbErr).Error("transaction rollback failed")
		}
		return err
	}
	return tx.Commit()
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) Insert(ctx context.Context, p *Product) error {
	header, details, footer, images, err := encodeColumns(p)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO products
		  (id, slug, name, header, details, footer, images, created_by, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.Slug, p.Name, header, details, footer, images, p.CreatedBy, p.UpdatedBy)
	return mapWriteError(err)
}

func (t *postgresTx) GetBySlugForUpdate(ctx context.Context, slug string) (*Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 FOR UPDATE`, slug)
	return scanLocked(row)
}

func (t *postgresTx) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	return scanLocked(row)
}

func (t *postgresTx) Update(ctx context.Context, p *Product) error {
	header, details, footer, _, err := encodeColumns(p)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx, `
		UPDATE products
		SET slug=$1, name=$2, header=$3, details=$4, footer=$5, updated_by=$6, updated_at=NOW()
		WHERE id=$7`,
		p.Slug, p.Name, header, details, footer, p.UpdatedBy, p.ID)
	return mapWriteError(err)
}

func (t *postgresTx) UpdateImages(ctx context.Context, id uuid.UUID, images ImageSet) error {
	encoded, err := encodeJSON(images)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(ctx,
		`UPDATE products SET images=$1, updated_at=NOW() WHERE id=$2`, encoded, id)
	return err
}

func (t *postgresTx) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLocked(row *sql.Row) (*Product, error) {
	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProduct(scan func(...interface{}) error) (*Product, error) {
	p := &Product{}
	var header, details, footer, images []byte
	err := scan(&p.ID, &p.Slug, &p.Name, &header, &details, &footer, &images,
		&p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(header, &p.Header); err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if err := decodeJSON(details, &p.Details); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	if err := decodeJSON(footer, &p.Footer); err != nil {
		return nil, fmt.Errorf("decode footer: %w", err)
	}
	if err := decodeJSON(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if p.Images.Details == nil {
		p.Images.Details = []string{}
	}
	return p, nil
}

func encodeColumns(p *Product) (header, details, footer, images []byte, err error) {
	if header, err = encodeJSON(p.Header); err != nil {
		return
	}
	if details, err = encodeJSON(p.Details); err != nil {
		return
	}
	if footer, err = encodeJSON(p.Footer); err != nil {
		return
	}
	images, err = encodeJSON(p.Images)
	return
}

// encodeJSON serializes v for a text column with HTML escaping off, so
// stored URL-bearing fields keep raw slashes.
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeJSON(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}
