// Package notify sends operational alerts and daily price digests by email
// through Resend.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Kind classifies a notification
type Kind string

const (
	KindAlert  Kind = "alert"
	KindDigest Kind = "digest"
)

// Config configures the mailer
type Config struct {
	APIKey            string
	From              string
	SystemRecipients  []string
	ServiceRecipients []string
}

// EmailSender is the part of the Resend client the mailer uses
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Mailer sends alerts to system recipients and digests to service recipients
type Mailer struct {
	sender EmailSender
	from   string
	system []string
	public []string
	log    Log
	logger *slog.Logger
}

// NewMailer creates a mailer. Without an API key mail is logged and skipped.
func NewMailer(cfg Config, log Log, logger *slog.Logger) *Mailer {
	var sender EmailSender
	if cfg.APIKey != "" {
		sender = resend.NewClient(cfg.APIKey).Emails
	}
	return NewMailerWithSender(sender, cfg, log, logger)
}

// NewMailerWithSender creates a mailer around an existing sender
func NewMailerWithSender(sender EmailSender, cfg Config, log Log, logger *slog.Logger) *Mailer {
	from := cfg.From
	if from == "" {
		from = "AFA Reports <reports@localhost>"
	}
	return &Mailer{
		sender: sender,
		from:   from,
		system: cfg.SystemRecipients,
		public: cfg.ServiceRecipients,
		log:    log,
		logger: logger,
	}
}

// Alert reports an operational failure to the system recipients
func (m *Mailer) Alert(ctx context.Context, subject string, cause error) error {
	body := fmt.Sprintf("<p>%s</p><pre>%s</pre>", html.EscapeString(subject), html.EscapeString(cause.Error()))
	return m.send(ctx, KindAlert, m.system, "[AFA] "+subject, body)
}

func (m *Mailer) send(ctx context.Context, kind Kind, to []string, subject, body string) error {
	if len(to) == 0 {
		m.logger.Debug("no recipients, skipping email",
			slog.String("kind", string(kind)),
			slog.String("subject", subject),
		)
		return nil
	}

	n := &Notification{Kind: kind, Subject: subject, Recipients: to}
	if m.sender == nil {
		m.logger.Warn("resend client not configured, skipping email",
			slog.String("kind", string(kind)),
			slog.String("subject", subject),
		)
		n.Error = "mailer disabled"
		m.record(ctx, n)
		return nil
	}

	_, err := m.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		n.Error = err.Error()
		m.record(ctx, n)
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	n.Sent = true
	m.record(ctx, n)
	m.logger.Info("email sent",
		slog.String("kind", string(kind)),
		slog.Int("recipients", len(to)),
	)
	return nil
}

func (m *Mailer) record(ctx context.Context, n *Notification) {
	if m.log == nil {
		return
	}
	if err := m.log.Record(ctx, n); err != nil {
		m.logger.Warn("failed to record notification", slog.Any("error", err))
	}
}
