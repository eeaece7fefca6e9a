// Package alert decides whether an observed price warrants a notification.
package alert

import (
	"github.com/shopspring/decimal"

	"pricewatch/internal/adapters/notify"
)

// Decision is the outcome of evaluating one observation against a target.
// It carries the composed payload when Notify is true; the caller decides
// whether and how to deliver it.
type Decision struct {
	Notify  bool
	Payload notify.Payload
}

// Evaluate returns a notify decision for one check cycle. Pure function:
// notify exactly when observed is strictly below target, derived only from
// this cycle's observation. A price equal to the target does not alert, and
// prior observations or earlier alerts are never consulted.
func Evaluate(title, url string, observed, target decimal.Decimal) Decision {
	if !observed.LessThan(target) {
		return Decision{}
	}
	return Decision{
		Notify: true,
		Payload: notify.Payload{
			Title:    title,
			URL:      url,
			Observed: observed,
			Target:   target,
		},
	}
}
