// Package mailer delivers transactional email through SendGrid, or logs it when no API key is set.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"ourcodingkiddos/backend/config"
)

// ErrNoRecipients message has nowhere to go
var ErrNoRecipients = errors.New("mailer: message has no recipients")

// Message outgoing email
type Message struct {
	To      []mail.Address
	ReplyTo *mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New picks SendGrid when an API key is configured, the log mailer otherwise
func New(cfg *config.MailConfig, logger *zap.Logger) Mailer {
	if cfg.SendGridAPIKey == "" {
		logger.Info("mail delivery disabled, messages will be logged")
		return NewLogMailer(logger)
	}
	return NewSendGrid(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, logger)
}

// ── SendGrid ──

type sendGridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	logger *zap.Logger
}

// NewSendGrid SendGrid v3 mailer
func NewSendGrid(apiKey, fromName, fromEmail string, logger *zap.Logger) Mailer {
	return &sendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (m *sendGridMailer) Send(ctx context.Context, msg *Message) error {
	v3, err := m.prepare(msg)
	if err != nil {
		return err
	}

	res, err := m.client.SendWithContext(ctx, v3)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}

	m.logger.Debug("mail sent", zap.String("subject", msg.Subject), zap.Int("status", res.StatusCode))
	return nil
}

func (m *sendGridMailer) prepare(msg *Message) (*sgmail.SGMailV3, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)
	if msg.ReplyTo != nil {
		v3.SetReplyTo(sgmail.NewEmail(msg.ReplyTo.Name, msg.ReplyTo.Address))
	}

	// text/plain must come before text/html
	if msg.Text != "" {
		v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3, nil
}

// ── log only ──

type logMailer struct {
	logger *zap.Logger
}

// NewLogMailer writes messages to the log instead of sending them
func NewLogMailer(logger *zap.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(_ context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	to := make([]string, 0, len(msg.To))
	for _, a := range msg.To {
		to = append(to, a.String())
	}
	m.logger.Info("mail (not sent)",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}
