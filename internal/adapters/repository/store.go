// Package repository defines the record store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricewatch/internal/domain/model"
)

// Store provides read/write access to tracked products and their observation
// ledger. The observation log is append-only: nothing edits or removes
// observations except the cascade on product deletion.
type Store interface {
	// AddProduct registers a product under its canonical URL.
	// Returns ErrDuplicateURL when the URL is already tracked.
	AddProduct(ctx context.Context, url string, target decimal.Decimal) (model.Product, error)

	// GetProduct returns a product by id. Returns ErrNotFound when unknown.
	GetProduct(ctx context.Context, id int64) (model.Product, error)

	// ListProducts returns every tracked product.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// DeleteProduct removes a product and cascades removal of its observations.
	// Returns ErrNotFound when unknown.
	DeleteProduct(ctx context.Context, id int64) error

	// UpdateTitle backfills the product title.
	UpdateTitle(ctx context.Context, id int64, title string) error

	// AppendObservation appends one price reading to the ledger.
	AppendObservation(ctx context.Context, productID int64, price decimal.Decimal, at time.Time) error

	// ListObservations returns a product's readings ordered by timestamp ascending.
	ListObservations(ctx context.Context, productID int64) ([]model.Observation, error)

	// LatestPrice returns the most recent observed price; ok is false when the
	// product has no observations yet.
	LatestPrice(ctx context.Context, productID int64) (price decimal.Decimal, ok bool, err error)
}
