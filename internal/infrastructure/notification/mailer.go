package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config holds SMTP connection parameters for operator notifications.
type Config struct {
	Host     string
	Port     int
	Username string // optional, some relays allow unauthenticated send
	Password string // optional
	From     string
	// SupportAddr receives warning digests and tax data gap alerts.
	SupportAddr string
}

// Mailer sends operator notifications over SMTP. It satisfies both the order
// pipeline's support notifier and the tax resolver's operator notifier; all
// alerts land in the same support inbox.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// NewMailer creates an SMTP mailer.
func NewMailer(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// NotifyOperators sends a plain-text alert to the support address.
func (m *Mailer) NotifyOperators(ctx context.Context, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := msg.To(m.cfg.SupportAddr); err != nil {
		return fmt.Errorf("mailer: invalid support address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mailer: create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("support notification failed",
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("mailer: send: %w", err)
	}

	m.logger.Info("support notification sent", zap.String("subject", subject))
	return nil
}

func (m *Mailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(30 * time.Second),
	}

	switch m.cfg.Port {
	case 465:
		opts = append(opts, mail.WithSSL())
	case 587:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		opts = append(opts,
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		)
	}

	return opts
}
