package queue

// Option applies a configuration option to the Memory queue.
type Option func(*Memory)

// WithCapacity sets the maximum capacity of the queue.
func WithCapacity(capacity int) Option {
	return func(q *Memory) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}
