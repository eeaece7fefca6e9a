package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pricewatch/internal/domain/model"
)

const pgUniqueViolation = "23505"

// PGStore is the Postgres-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres and ensures the schema exists.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PGStore) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS products (
    id           BIGSERIAL PRIMARY KEY,
    url          TEXT NOT NULL UNIQUE,
    target_price NUMERIC(12,2) NOT NULL,
    title        TEXT
);
CREATE TABLE IF NOT EXISTS price_history (
    id          BIGSERIAL PRIMARY KEY,
    product_id  BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
    price       NUMERIC(12,2) NOT NULL,
    observed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_history_product
    ON price_history (product_id, observed_at);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

// AddProduct inserts a product; the UNIQUE constraint on url enforces
// canonical identity and maps to ErrDuplicateURL.
func (s *PGStore) AddProduct(ctx context.Context, url string, target decimal.Decimal) (model.Product, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (url, target_price) VALUES ($1, $2) RETURNING id`,
		url, target.String()).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return model.Product{}, ErrDuplicateURL
		}
		return model.Product{}, fmt.Errorf("pgstore: add product: %w", err)
	}
	return model.Product{ID: id, URL: url, TargetPrice: target}, nil
}

// GetProduct returns a product by id.
func (s *PGStore) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	var (
		p           model.Product
		targetText  string
		title       *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, url, target_price::text, title FROM products WHERE id = $1`,
		id).Scan(&p.ID, &p.URL, &targetText, &title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrNotFound
		}
		return model.Product{}, fmt.Errorf("pgstore: get product: %w", err)
	}

	target, err := decimal.NewFromString(targetText)
	if err != nil {
		return model.Product{}, fmt.Errorf("pgstore: parse target price: %w", err)
	}
	p.TargetPrice = target
	if title != nil {
		p.Title = *title
	}
	return p, nil
}

// ListProducts returns every tracked product ordered by id.
func (s *PGStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, url, target_price::text, title FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var (
			p          model.Product
			targetText string
			title      *string
		)
		if err := rows.Scan(&p.ID, &p.URL, &targetText, &title); err != nil {
			return nil, fmt.Errorf("pgstore: scan product: %w", err)
		}
		target, err := decimal.NewFromString(targetText)
		if err != nil {
			return nil, fmt.Errorf("pgstore: parse target price: %w", err)
		}
		p.TargetPrice = target
		if title != nil {
			p.Title = *title
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list products: %w", err)
	}
	return out, nil
}

// DeleteProduct removes a product; price_history rows go with it via
// ON DELETE CASCADE.
func (s *PGStore) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgstore: delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTitle backfills the product title.
func (s *PGStore) UpdateTitle(ctx context.Context, id int64, title string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE products SET title = $1 WHERE id = $2`, title, id)
	if err != nil {
		return fmt.Errorf("pgstore: update title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendObservation appends one reading to the ledger.
func (s *PGStore) AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO price_history (product_id, price, observed_at) VALUES ($1, $2, $3)`,
		productID, price.String(), at.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		// foreign key violation means the product was deleted between
		// scheduling and execution
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("pgstore: append observation: %w", err)
	}
	return nil
}

// ListObservations returns readings ordered by timestamp ascending.
func (s *PGStore) ListObservations(ctx context.Context, productID int64) ([]model.Observation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT product_id, price::text, observed_at
		   FROM price_history WHERE product_id = $1 ORDER BY observed_at ASC, id ASC`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list observations: %w", err)
	}
	defer rows.Close()

	var out []model.Observation
	for rows.Next() {
		var (
			o         model.Observation
			priceText string
		)
		if err := rows.Scan(&o.ProductID, &priceText, &o.At); err != nil {
			return nil, fmt.Errorf("pgstore: scan observation: %w", err)
		}
		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("pgstore: parse price: %w", err)
		}
		o.Price = price
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgstore: list observations: %w", err)
	}
	return out, nil
}

// LatestPrice returns the most recent observed price for a product.
func (s *PGStore) LatestPrice(ctx context.Context, productID int64) (decimal.Decimal, bool, error) {
	var priceText string
	err := s.pool.QueryRow(ctx,
		`SELECT price::text FROM price_history
		  WHERE product_id = $1 ORDER BY observed_at DESC, id DESC LIMIT 1`,
		productID).Scan(&priceText)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, false, nil
		}
		return decimal.Decimal{}, false, fmt.Errorf("pgstore: latest price: %w", err)
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("pgstore: parse price: %w", err)
	}
	return price, true, nil
}
