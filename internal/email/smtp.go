// Package email delivers HTML email over SMTP, directly or through an asynq queue.
package email

import (
	"context"
	"fmt"

	"github.com/catalyst/backend/internal/config"
	"gopkg.in/mail.v2"
)

// dialer is satisfied by *mail.Dialer
type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// SMTPSender sends email synchronously over SMTP
type SMTPSender struct {
	from   string
	dialer dialer
}

// NewSMTPSender creates a sender for the configured SMTP server
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// Send delivers one HTML email
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
