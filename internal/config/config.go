// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep the struct flat and koanf-tagged; layering happens in Load.
// - Headers and credentials live here and are injected into the extraction
//   engine and notifiers at construction time; core logic never reads
//   ambient process state.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CheckIntervalSeconds is the scheduling period for product checks.
	CheckIntervalSeconds int `koanf:"check_interval_seconds"`

	// FetchTimeoutSeconds bounds a single page fetch.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// PolitenessDelayMS is the deliberate delay inserted before each fetch.
	PolitenessDelayMS int `koanf:"politeness_delay_ms"`

	// UserAgent and AcceptLanguage identify the request as a realistic browser.
	UserAgent      string `koanf:"user_agent"`
	AcceptLanguage string `koanf:"accept_language"`

	// WorkerCount sets the number of check workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the check job queue.
	QueueSize int `koanf:"queue_size"`

	// QueueBackend selects the dispatch substrate: memory or redis.
	QueueBackend  string `koanf:"queue_backend"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`

	// StoreBackend selects the record store: memory or postgres.
	StoreBackend string `koanf:"store_backend"`
	PostgresDSN  string `koanf:"postgres_dsn"`

	// SMTP settings for the email notifier. Alerts via email are disabled
	// unless SMTPHost and the addresses are set.
	SMTPHost       string `koanf:"smtp_host"`
	SMTPPort       int    `koanf:"smtp_port"`
	SenderEmail    string `koanf:"sender_email"`
	SenderPassword string `koanf:"sender_password"`
	RecipientEmail string `koanf:"recipient_email"`

	// WebhookURL, when set, receives a JSON POST per alert.
	WebhookURL string `koanf:"webhook_url"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":8080",
		CheckIntervalSeconds: 300,
		FetchTimeoutSeconds:  15,
		PolitenessDelayMS:    1500,
		UserAgent:            "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
		AcceptLanguage:       "en-US,en;q=0.9",
		WorkerCount:          runtime.NumCPU(),
		QueueSize:            1024,
		QueueBackend:         "memory",
		RedisAddr:            "localhost:6379",
		StoreBackend:         "memory",
		SMTPPort:             465,
	}
}
