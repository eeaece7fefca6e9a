package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"pricewatch/pkg/logger"
)

// MailerConfig holds SMTP settings for the email channel. Credentials are
// injected here at construction; nothing reads them from the environment later.
type MailerConfig struct {
	Host      string
	Port      int
	Sender    string
	Password  string
	Recipient string
}

// Mailer sends price alerts by email over SMTP with implicit TLS.
type Mailer struct {
	cfg    MailerConfig
	logger logger.Logger
}

// NewMailer creates the email channel.
func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg, logger: logger.Named("mailer")}
}

// Deliver composes and sends one alert email.
func (m *Mailer) Deliver(ctx context.Context, p Payload) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return fmt.Errorf("mailer: invalid sender: %w", err)
	}
	if err := msg.To(m.cfg.Recipient); err != nil {
		return fmt.Errorf("mailer: invalid recipient: %w", err)
	}
	msg.Subject("Price Alert: " + p.Title)
	msg.SetBodyString(mail.TypeTextPlain, m.body(p))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Sender),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("mailer: client setup: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}

	m.logger.Info(ctx, "alert email sent", logger.String("title", p.Title))
	return nil
}

func (m *Mailer) body(p Payload) string {
	return fmt.Sprintf(`Great news!

The price for '%s' has dropped below your target of $%s.

The current price is now $%s.

You can buy it here: %s

Happy shopping!
`, p.Title, p.Target.StringFixed(2), p.Observed.StringFixed(2), p.URL)
}
