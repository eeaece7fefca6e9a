// Package scheduler periodically sweeps the catalog and dispatches one check
// job per tracked product.
package scheduler

import (
	"context"
	"time"

	"pricewatch/internal/domain/model"
	"pricewatch/pkg/logger"
)

// Catalog lists the products a sweep should cover.
type Catalog interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// Dispatcher accepts one check job per product per sweep.
type Dispatcher interface {
	EnqueueCheck(ctx context.Context, productID int64) bool
}

// Scheduler drives recurring check sweeps on a fixed interval.
type Scheduler struct {
	catalog    Catalog
	dispatcher Dispatcher
	interval   time.Duration
	log        logger.Logger
}

// New creates a scheduler sweeping every interval.
func New(catalog Catalog, dispatcher Dispatcher, interval time.Duration) *Scheduler {
	return &Scheduler{
		catalog:    catalog,
		dispatcher: dispatcher,
		interval:   interval,
		log:        logger.Named("scheduler"),
	}
}

// Run sweeps immediately, then on every tick until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.log.Info(ctx, "scheduler started", logger.String("interval", s.interval.String()))

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep dispatches one job per product. A rejected dispatch is skipped, not
// retried; the product is picked up again on the next sweep.
func (s *Scheduler) sweep(ctx context.Context) {
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		s.log.Error(ctx, "sweep failed to list products", logger.Error(err))
		return
	}

	dispatched := 0
	for _, p := range products {
		if s.dispatcher.EnqueueCheck(ctx, p.ID) {
			dispatched++
		}
	}

	s.log.Debug(ctx, "sweep complete",
		logger.Int("products", len(products)),
		logger.Int("dispatched", dispatched),
	)
}
