// Package email sends notification emails.
package email

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/pathwayhq/pathway/pkg/config"
	"github.com/wneessen/go-mail"
)

// Message is a plain-text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host
// is configured.
func New(cfg config.EmailConfig, logger *log.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger.WithPrefix("email")}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer delivers messages over SMTP.
type SMTPMailer struct {
	cfg config.EmailConfig
}

var _ Mailer = (*SMTPMailer)(nil)

// Build returns the go-mail message for msg.
func (m *SMTPMailer) Build(msg Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := mm.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)
	return mm, nil
}

// Send implements Mailer.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm, err := m.Build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogMailer logs messages instead of sending them.
type LogMailer struct {
	logger *log.Logger
}

var _ Mailer = (*LogMailer)(nil)

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email", "to", msg.To, "subject", msg.Subject)
	return nil
}
