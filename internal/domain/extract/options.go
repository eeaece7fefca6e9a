package extract

import (
	"net/http"
	"time"

	"pricewatch/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTimeout bounds a single page fetch.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// WithPolitenessDelay sets the deliberate delay inserted before each fetch.
// Zero disables the delay (useful in tests).
func WithPolitenessDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each fetch.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		if ua != "" {
			e.userAgent = ua
		}
	}
}

// WithAcceptLanguage sets the Accept-Language header sent with each fetch.
func WithAcceptLanguage(al string) Option {
	return func(e *Engine) {
		if al != "" {
			e.acceptLanguage = al
		}
	}
}

// WithClient replaces the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.client = c
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}
