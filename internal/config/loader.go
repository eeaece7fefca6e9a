package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PRICEWATCH_CONFIG is set
//  3. env (prefix PRICEWATCH_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("PRICEWATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PRICEWATCH_ADDR, PRICEWATCH_QUEUE_SIZE, ...
	// Map env keys like PRICEWATCH_QUEUE_SIZE -> queue_size (flat keys).
	envProvider := env.Provider("PRICEWATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pricewatch_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CheckIntervalSeconds <= 0:
		return fmt.Errorf("%w: check_interval_seconds must be positive", ErrInvalidConfig)
	case c.FetchTimeoutSeconds <= 0:
		return fmt.Errorf("%w: fetch_timeout_seconds must be positive", ErrInvalidConfig)
	case c.PolitenessDelayMS < 0:
		return fmt.Errorf("%w: politeness_delay_ms must not be negative", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}

	switch c.QueueBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("%w: unknown queue_backend %q", ErrInvalidConfig, c.QueueBackend)
	}

	switch c.StoreBackend {
	case "memory":
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn required for postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}

	return nil
}
