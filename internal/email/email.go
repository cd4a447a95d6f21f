package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"gopkg.in/gomail.v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender logs emails instead of sending them — used in local dev.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("otp email (local dev)", "to", to, "subject", subject, "body", body)
	return nil
}

// SMTPSender delivers over plain SMTP.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
	}
	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// NewSender picks the sender for the configured provider:
// "smtp" and "resend" deliver for real, anything else logs.
func NewSender(provider, apiKey, from string, smtp SMTPConfig, logger *slog.Logger) Sender {
	switch provider {
	case "smtp":
		return &SMTPSender{
			dialer: gomail.NewDialer(smtp.Host, smtp.Port, smtp.User, smtp.Password),
			from:   from,
		}
	case "resend":
		return &ResendSender{
			client: resend.NewClient(apiKey),
			from:   from,
		}
	default:
		return &LogSender{logger: logger}
	}
}
