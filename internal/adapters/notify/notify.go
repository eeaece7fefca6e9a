// Package notify delivers price alerts over the configured channels.
package notify

import (
	"context"

	"github.com/shopspring/decimal"

	"pricewatch/pkg/logger"
)

// Payload is the composed alert content handed to a channel.
type Payload struct {
	Title    string          `json:"title"`
	URL      string          `json:"url"`
	Observed decimal.Decimal `json:"observed_price"`
	Target   decimal.Decimal `json:"target_price"`
}

// Notifier delivers one alert. A delivery failure is returned for logging but
// must never escalate past the caller: observation durability always outranks
// alert delivery.
type Notifier interface {
	Deliver(ctx context.Context, p Payload) error
}

// LogNotifier writes alerts to the log. It is the default channel when
// neither SMTP nor a webhook is configured.
type LogNotifier struct {
	logger logger.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

// Deliver logs the alert and always succeeds.
func (n *LogNotifier) Deliver(ctx context.Context, p Payload) error {
	n.logger.Info(ctx, "price alert",
		logger.String("title", p.Title),
		logger.String("url", p.URL),
		logger.String("observed", p.Observed.String()),
		logger.String("target", p.Target.String()),
	)
	return nil
}

// Fanout delivers to every configured channel and reports the first failure
// after attempting all of them.
type Fanout struct {
	channels []Notifier
}

// NewFanout combines multiple notifiers into one.
func NewFanout(channels ...Notifier) *Fanout {
	return &Fanout{channels: channels}
}

// Deliver attempts every channel; one failing channel does not stop the rest.
func (f *Fanout) Deliver(ctx context.Context, p Payload) error {
	var firstErr error
	for _, ch := range f.channels {
		if err := ch.Deliver(ctx, p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
