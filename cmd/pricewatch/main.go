package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricewatch/internal/adapters/http/api"
	"pricewatch/internal/adapters/mq/queue"
	"pricewatch/internal/adapters/notify"
	"pricewatch/internal/adapters/repository"
	"pricewatch/internal/app"
	"pricewatch/internal/config"
	"pricewatch/internal/domain/extract"
	"pricewatch/internal/scheduler"
	"pricewatch/pkg/logger"
	"pricewatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "store setup failed", logger.Error(err))
		return
	}

	q, err := buildQueue(cfg)
	if err != nil {
		log.Error(ctx, "queue setup failed", logger.Error(err))
		return
	}

	engine := extract.New(
		extract.WithTimeout(time.Duration(cfg.FetchTimeoutSeconds)*time.Second),
		extract.WithPolitenessDelay(time.Duration(cfg.PolitenessDelayMS)*time.Millisecond),
		extract.WithUserAgent(cfg.UserAgent),
		extract.WithAcceptLanguage(cfg.AcceptLanguage),
	)

	svc := app.New(
		app.WithStore(store),
		app.WithQueue(q),
		app.WithExtractor(engine),
		app.WithNotifier(buildNotifier(cfg)),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithLogger(log),
	)
	svc.Start(ctx)
	defer svc.Stop()

	// Recurring check sweeps.
	sched := scheduler.New(store, svc, time.Duration(cfg.CheckIntervalSeconds)*time.Second)
	go sched.Run(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(mux)
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StoreBackend == "postgres" {
		return repository.NewPGStore(ctx, cfg.PostgresDSN)
	}
	return repository.NewMemStore(), nil
}

func buildQueue(cfg *config.Config) (queue.Queue, error) {
	if cfg.QueueBackend == "redis" {
		return queue.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	}
	return queue.NewMemory(queue.WithCapacity(cfg.QueueSize)), nil
}

// buildNotifier assembles the alert channels the configuration enables. With
// nothing configured, alerts go to the log.
func buildNotifier(cfg *config.Config) notify.Notifier {
	var channels []notify.Notifier
	if cfg.SMTPHost != "" && cfg.SenderEmail != "" && cfg.RecipientEmail != "" {
		channels = append(channels, notify.NewMailer(notify.MailerConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Sender:    cfg.SenderEmail,
			Password:  cfg.SenderPassword,
			Recipient: cfg.RecipientEmail,
		}))
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhook(cfg.WebhookURL))
	}

	switch len(channels) {
	case 0:
		return notify.NewLogNotifier()
	case 1:
		return channels[0]
	default:
		return notify.NewFanout(channels...)
	}
}
