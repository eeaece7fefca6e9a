package worker

import "pricewatch/pkg/logger"

// Option configures a Pool.
type Option func(*Pool)

// WithCount sets the number of concurrent workers.
func WithCount(n int) Option {
	return func(p *Pool) {
		p.count = n
	}
}

// WithLogger sets the pool's logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		p.log = l
	}
}
