package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

const (
	defaultRedisKey  = "pricewatch:checks"
	redisPollTimeout = 2 * time.Second
	redisPingTimeout = 5 * time.Second
)

// Redis implements Queue on a Redis list, so checks survive process restarts
// and multiple processes can share one backlog. Jobs are JSON-encoded and
// pushed with LPUSH; consumers pop with BRPOP.
type Redis struct {
	client *redis.Client
	key    string
	logger logger.Logger

	cancel context.CancelFunc
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(addr, password string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("queue: connect redis at %s: %w", addr, err)
	}

	return &Redis{
		client: client,
		key:    defaultRedisKey,
		logger: logger.Named("redis-queue"),
	}, nil
}

// Enqueue pushes one JSON-encoded job.
func (q *Redis) Enqueue(ctx context.Context, j Job) bool {
	body, err := json.Marshal(j)
	if err != nil {
		metrics.RecordEnqueueError()
		return false
	}
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		metrics.RecordEnqueueError()
		q.logger.Error(ctx, "enqueue failed", logger.Error(err))
		return false
	}
	metrics.RecordEnqueue()
	return true
}

// Dequeue starts a consumer loop popping jobs into the returned channel.
// The channel closes when ctx is canceled or the queue is closed.
func (q *Redis) Dequeue(ctx context.Context) <-chan Job {
	ctx, q.cancel = context.WithCancel(ctx)
	out := make(chan Job)

	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, redisPollTimeout, q.key).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if err != redis.Nil {
					q.logger.Warn(ctx, "brpop failed", logger.Error(err))
				}
				continue
			}
			// BRPOP returns [key, value]
			if len(res) != 2 {
				continue
			}
			var j Job
			if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
				q.logger.Warn(ctx, "dropping malformed job", logger.Error(err))
				continue
			}
			select {
			case out <- j:
				metrics.RecordDequeue()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the backlog length.
func (q *Redis) Len(ctx context.Context) int {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Close stops the consumer loop and releases the client.
func (q *Redis) Close() error {
	if q.cancel != nil {
		q.cancel()
	}
	return q.client.Close()
}
