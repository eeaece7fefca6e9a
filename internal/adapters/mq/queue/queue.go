// Package queue defines the contract for dispatching and consuming check jobs.
//
// The substrate guarantees at-least-once delivery: a job may reach a worker
// more than once, and the check cycle is safe under that.
package queue

import (
	"context"
	"sync"

	"pricewatch/internal/domain/model"
	"pricewatch/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 1024
)

// Job is the payload type flowing through the queue.
type Job = model.CheckJob

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job to the queue.
	// Returns false if the queue is full or closed and the job was not accepted.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns a channel that will receive jobs as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	Close() error
}

// Memory implements Queue using a bounded buffered channel.
type Memory struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewMemory creates a new in-memory queue with configuration options.
func NewMemory(opts ...Option) *Memory {
	q := &Memory{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *Memory) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordEnqueueError()
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordEnqueue()
		q.publishDepth()
		return true
	case <-ctx.Done():
		metrics.RecordEnqueueError()
		return false
	default:
		// queue is full
		metrics.RecordEnqueueError()
		return false
	}
}

// Dequeue returns a channel that receives jobs as they become available.
func (q *Memory) Dequeue(ctx context.Context) <-chan Job {
	out := make(chan Job)
	go func() {
		defer close(out)
		for j := range q.jobs {
			select {
			case out <- j:
				metrics.RecordDequeue()
				q.publishDepth()
			case <-ctx.Done():
				// A job caught mid-handoff on cancel is lost; the next
				// scheduler sweep re-dispatches that product.
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *Memory) Len(ctx context.Context) int {
	return len(q.jobs)
}

// Close shuts down the queue; pending jobs still drain to consumers.
func (q *Memory) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

func (q *Memory) publishDepth() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
