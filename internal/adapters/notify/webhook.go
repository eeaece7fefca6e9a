package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pricewatch/pkg/logger"
)

const webhookTimeout = 10 * time.Second

// Webhook POSTs the alert payload as JSON to a configured endpoint.
type Webhook struct {
	url    string
	client *http.Client
	logger logger.Logger
}

// NewWebhook creates the webhook channel.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: webhookTimeout},
		logger: logger.Named("webhook"),
	}
}

// Deliver sends one alert. Any non-2xx response counts as a failure.
func (w *Webhook) Deliver(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "pricewatch/1.0")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	w.logger.Debug(ctx, "alert webhook delivered", logger.String("url", w.url))
	return nil
}
