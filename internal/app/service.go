// Package app wires the monitoring pipeline together and owns the check
// cycle: load product, extract, record, evaluate, notify.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"pricewatch/internal/adapters/mq/queue"
	"pricewatch/internal/adapters/mq/worker"
	"pricewatch/internal/adapters/notify"
	"pricewatch/internal/adapters/repository"
	"pricewatch/internal/domain/alert"
	"pricewatch/internal/domain/catalog"
	"pricewatch/internal/domain/extract"
	"pricewatch/internal/domain/model"
	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"

	"github.com/shopspring/decimal"
)

// Extractor pulls title and price from a product page.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (extract.Result, error)
}

// Stats is a point-in-time snapshot of the pipeline.
type Stats struct {
	TrackedProducts int `json:"tracked_products"`
	QueueLength     int `json:"queue_length"`
	Workers         int `json:"workers"`
}

// Service orchestrates product tracking and price checks.
type Service struct {
	store    repository.Store
	engine   Extractor
	queue    queue.Queue
	notifier notify.Notifier
	workers  int
	log      logger.Logger

	pool *worker.Pool
}

// New creates the service. Unset collaborators fall back to in-memory
// implementations so the service is usable with zero configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workers: runtime.NumCPU(),
		log:     logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	if s.engine == nil {
		s.engine = extract.New()
	}
	if s.queue == nil {
		s.queue = queue.NewMemory()
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier()
	}
	return s
}

// Start launches the worker pool consuming check jobs.
func (s *Service) Start(ctx context.Context) {
	s.pool = worker.NewPool(s.queue, s,
		worker.WithCount(s.workers),
		worker.WithLogger(s.log.Named("worker")),
	)
	s.pool.Start(ctx)
}

// Stop closes the queue and waits for in-flight checks to finish.
func (s *Service) Stop() {
	_ = s.queue.Close()
	if s.pool != nil {
		s.pool.Stop()
	}
}

// AddProduct canonicalizes the URL, registers the product, and queues an
// immediate first check so the title and price populate right away.
func (s *Service) AddProduct(ctx context.Context, rawURL string, target decimal.Decimal) (model.Product, error) {
	canonical := catalog.Canonicalize(rawURL)

	p, err := s.store.AddProduct(ctx, canonical, target)
	if err != nil {
		return model.Product{}, err
	}

	s.publishTracked(ctx)
	s.EnqueueCheck(ctx, p.ID)

	s.log.Info(ctx, "product added",
		logger.Int64("product_id", p.ID),
		logger.String("url", p.URL),
		logger.String("target", p.TargetPrice.String()),
	)
	return p, nil
}

// RemoveProduct deletes a product and its observation history.
func (s *Service) RemoveProduct(ctx context.Context, id int64) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.publishTracked(ctx)
	s.log.Info(ctx, "product removed", logger.Int64("product_id", id))
	return nil
}

// Products lists tracked products, each with its latest observed price.
func (s *Service) Products(ctx context.Context) ([]model.ProductSummary, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ProductSummary, 0, len(products))
	for _, p := range products {
		summary := model.ProductSummary{Product: p}
		price, ok, err := s.store.LatestPrice(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			summary.LatestPrice = &price
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// History returns a product's observations, oldest first.
func (s *Service) History(ctx context.Context, productID int64) ([]model.Observation, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.store.ListObservations(ctx, productID)
}

// EnqueueCheck dispatches one check job for the product. Returns false when
// the queue rejected the job.
func (s *Service) EnqueueCheck(ctx context.Context, productID int64) bool {
	ok := s.queue.Enqueue(ctx, queue.Job{
		ID:        uuid.NewString(),
		ProductID: productID,
	})
	if !ok {
		s.log.Warn(ctx, "check dispatch rejected", logger.Int64("product_id", productID))
	}
	return ok
}

// Stats reports a snapshot of the pipeline.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TrackedProducts: len(products),
		QueueLength:     s.queue.Len(ctx),
		Workers:         s.workers,
	}, nil
}

// RunCheck executes one full check cycle for a product. Each invocation is
// independent: re-delivery of the same job appends a fresh observation rather
// than being deduplicated, and a failure for one product never affects
// another.
func (s *Service) RunCheck(ctx context.Context, productID int64) (model.Outcome, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted between scheduling and execution.
			return model.OutcomeSkippedMissing, nil
		}
		return model.OutcomeSkippedMissing, fmt.Errorf("load product %d: %w", productID, err)
	}

	res, err := s.engine.Extract(ctx, p.URL)
	if err != nil {
		return model.OutcomeTransportFailed, fmt.Errorf("extract %s: %w", p.URL, err)
	}

	if res.TitleFound && p.Title == "" {
		// Best effort: a backfill failure must not cost the observation.
		if err := s.store.UpdateTitle(ctx, p.ID, res.Title); err != nil {
			s.log.Warn(ctx, "title backfill failed",
				logger.Int64("product_id", p.ID),
				logger.Error(err),
			)
		} else {
			p.Title = res.Title
		}
	}

	if !res.PriceFound {
		return model.OutcomeSkippedNoPrice, nil
	}

	if err := s.store.AppendObservation(ctx, p.ID, res.Price, time.Now().UTC()); err != nil {
		metrics.RecordStoreError()
		return model.OutcomeSkippedNoPrice, fmt.Errorf("append observation for %d: %w", p.ID, err)
	}
	metrics.RecordObservation()

	decision := alert.Evaluate(p.Title, p.URL, res.Price, p.TargetPrice)
	if !decision.Notify {
		return model.OutcomeObserved, nil
	}

	// The observation is already durable; delivery failure is logged only.
	if err := s.notifier.Deliver(ctx, decision.Payload); err != nil {
		metrics.RecordAlertDeliveryError()
		s.log.Error(ctx, "alert delivery failed",
			logger.Int64("product_id", p.ID),
			logger.Error(err),
		)
	} else {
		metrics.RecordAlertSent()
	}
	return model.OutcomeAlerted, nil
}

func (s *Service) publishTracked(ctx context.Context) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return
	}
	metrics.UpdateTrackedProducts(len(products))
}
