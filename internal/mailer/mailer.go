// Package mailer sends the transactional emails of the account flows.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"gopkg.in/gomail.v2"

	"jobportal-backend/internal/config"
)

// Message is one outgoing HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender, or a LogSender when no SMTP host is configured.
func New(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return &LogSender{logger: logger}
	}
	return NewSMTPSender(cfg)
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

// NewSMTPSender builds an SMTPSender from cfg.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) message(msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return m
}

// Send dials the relay and sends msg. gomail has no context support, so ctx is only checked up front.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.message(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in development.
type LogSender struct {
	logger *slog.Logger
}

// Send logs msg.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	logger := s.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail not sent, no SMTP host configured", "to", msg.To, "subject", msg.Subject, "body", msg.HTML)
	return nil
}

var templates = template.Must(template.New("mail").Parse(`
{{define "verify"}}<p>Hello {{.Name}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>. It expires in {{.TTL}}.</p>{{end}}
{{define "reset"}}<p>Hello {{.Name}},</p>
<p>Someone asked to reset your password. Use the link below within {{.TTL}}:</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If this was not you, ignore this email.</p>{{end}}
`))

// TemplateData feeds the mail templates.
type TemplateData struct {
	Name string
	Code string
	Link string
	TTL  string
}

func render(name string, data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

// VerificationMessage builds the email carrying an email verification code.
func VerificationMessage(to string, data TemplateData) (Message, error) {
	body, err := render("verify", data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Verify your email", HTML: body}, nil
}

// PasswordResetMessage builds the email carrying a password reset link.
func PasswordResetMessage(to string, data TemplateData) (Message, error) {
	body, err := render("reset", data)
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: "Reset your password", HTML: body}, nil
}
