// Package model defines the core entities shared across the monitoring pipeline.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a tracked catalog item. Identity is the canonical URL; Title is
// empty until the first successful check backfills it.
type Product struct {
	ID          int64           `json:"id"`
	URL         string          `json:"url"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Title       string          `json:"title,omitempty"`
}

// Observation is one timestamped price reading. Observations are append-only:
// they are never edited or deleted except by cascade when the product goes.
type Observation struct {
	ProductID int64           `json:"product_id"`
	Price     decimal.Decimal `json:"price"`
	At        time.Time       `json:"at"`
}

// ProductSummary pairs a product with its most recent observed price, if any.
type ProductSummary struct {
	Product
	LatestPrice *decimal.Decimal `json:"latest_price,omitempty"`
}

// CheckJob is the unit of work dispatched per product per cycle. The job ID
// identifies one logical dispatch; the same product may legitimately appear in
// multiple jobs (at-least-once delivery, overlapping cycles).
type CheckJob struct {
	ID        string `json:"id"`
	ProductID int64  `json:"product_id"`
}

// Outcome reports how a single check cycle ended.
type Outcome string

const (
	// OutcomeSkippedMissing means the product vanished between scheduling and
	// execution; the check is a no-op.
	OutcomeSkippedMissing Outcome = "skipped-product-missing"
	// OutcomeSkippedNoPrice means no price locator matched; nothing was written.
	OutcomeSkippedNoPrice Outcome = "skipped-no-price"
	// OutcomeObserved means a price was recorded and it did not qualify for an alert.
	OutcomeObserved Outcome = "observed-no-alert"
	// OutcomeAlerted means a price was recorded and an alert was dispatched.
	OutcomeAlerted Outcome = "observed-alerted"
	// OutcomeTransportFailed means the page fetch itself failed; nothing was written.
	OutcomeTransportFailed Outcome = "failed-transport"
)
