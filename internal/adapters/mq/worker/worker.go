// Package worker consumes check jobs from a queue and runs them through the
// check runner. Each job carries a product ID; the runner owns the full
// check cycle and the worker only records what happened.
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"

	"pricewatch/internal/adapters/mq/queue"
	"pricewatch/internal/domain/model"
	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

// Runner executes a single check for a product.
type Runner interface {
	RunCheck(ctx context.Context, productID int64) (model.Outcome, error)
}

// Pool manages a set of workers consuming from a shared queue.
type Pool struct {
	queue  queue.Queue
	runner Runner
	count  int
	log    logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewPool creates a worker pool with configuration options.
func NewPool(q queue.Queue, r Runner, opts ...Option) *Pool {
	p := &Pool{
		queue:  q,
		runner: r,
		count:  runtime.NumCPU(),
		log:    logger.Named("worker"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.count < 1 {
		p.count = 1
	}
	return p
}

// Start launches the workers. It returns immediately; workers run until
// Stop is called or the queue's job channel closes.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	jobs := p.queue.Dequeue(runCtx)
	metrics.UpdateWorkerCount(p.count)

	var wg sync.WaitGroup
	for i := 0; i < p.count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.run(runCtx, id, jobs)
		}(i)
	}

	go func() {
		wg.Wait()
		metrics.UpdateWorkerCount(0)
		close(p.done)
	}()

	p.log.Info(ctx, "worker pool started", logger.Int("workers", p.count))
}

// Stop signals all workers to finish and waits for them to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.started = false
	p.mu.Unlock()

	cancel()
	<-done
	p.log.Info(context.Background(), "worker pool stopped")
}

func (p *Pool) run(ctx context.Context, id int, jobs <-chan queue.Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			p.process(ctx, id, j)
		}
	}
}

func (p *Pool) process(ctx context.Context, id int, j queue.Job) {
	start := time.Now()
	outcome, err := p.runner.RunCheck(ctx, j.ProductID)
	metrics.RecordWorkerLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordCheck(string(outcome))

	if err != nil {
		metrics.RecordWorkerError()
		p.log.Error(ctx, "check failed",
			logger.String("job_id", j.ID),
			logger.Int64("product_id", j.ProductID),
			logger.String("outcome", string(outcome)),
			logger.Error(err),
		)
		return
	}

	p.log.Debug(ctx, "check complete",
		logger.String("job_id", j.ID),
		logger.Int64("product_id", j.ProductID),
		logger.String("outcome", string(outcome)),
		logger.Int("worker", id),
	)
}
