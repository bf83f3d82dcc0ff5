package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Email is an outbound message
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends outbound email. Implementations may fail; callers decide
// whether a failure propagates.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SendGridMailer sends email through the SendGrid API
type SendGridMailer struct {
	client *sendgrid.Client
	sender string
}

// NewSendGridMailer creates a SendGrid backed Mailer. The API key and sender
// address are process-wide configuration.
func NewSendGridMailer(cfg Config) *SendGridMailer {
	return &SendGridMailer{
		client: sendgrid.NewSendClient(cfg.GetMailAPIKey()),
		sender: cfg.GetMailSender(),
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Email) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", m.sender),
		msg.Subject,
		mail.NewEmail("", msg.To),
		"",
		msg.HTML,
	)

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "sendgrid send failed")
	}

	if resp.StatusCode >= 400 {
		return errors.New("sendgrid rejected message", errors.CategoryInternal).
			WithMetadata(map[string]any{"status_code": resp.StatusCode})
	}

	return nil
}

// VerificationMailer composes and dispatches account confirmation emails.
// Dispatch is best-effort: failures are logged and never returned, identity
// creation must not be blocked by a third-party outage.
type VerificationMailer struct {
	mailer  Mailer
	baseURL string
	logger  Logger
}

// NewVerificationMailer will create a new VerificationMailer
func NewVerificationMailer(mailer Mailer, cfg Config) *VerificationMailer {
	return &VerificationMailer{
		mailer:  mailer,
		baseURL: strings.TrimRight(cfg.GetBaseURL(), "/"),
		logger:  defLogger{},
	}
}

func (n *VerificationMailer) WithLogger(logger Logger) *VerificationMailer {
	n.logger = logger
	return n
}

// SendVerificationEmail sends the confirmation link embedding the token
func (n *VerificationMailer) SendVerificationEmail(ctx context.Context, to, token string) {
	link := fmt.Sprintf("%s/api/users/verify/%s", n.baseURL, token)

	msg := Email{
		To:      to,
		Subject: "Please confirm your email",
		HTML:    fmt.Sprintf(`<a href="%s">Confirm your email</a>`, link),
	}

	if err := n.mailer.Send(ctx, msg); err != nil {
		n.logger.Error("verification email dispatch failed", "to", to, "error", err)
		return
	}

	n.logger.Info("verification email sent", "to", to)
}
