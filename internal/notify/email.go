package notify

import (
	"context"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"

	"expensex/internal/services"
)

// EmailConfig holds SMTP settings for alert mail.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email sends each alert as an HTML mail.
type Email struct {
	cfg    EmailConfig
	sender Sender
}

// NewEmail creates an email notifier dialing the configured SMTP server.
func NewEmail(cfg EmailConfig) *Email {
	return &Email{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewEmailWithSender is NewEmail with a custom transport.
func NewEmailWithSender(cfg EmailConfig, sender Sender) *Email {
	return &Email{cfg: cfg, sender: sender}
}

func (e *Email) Notify(ctx context.Context, a services.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.sender.DialAndSend(e.Message(a)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}

// Message composes the mail for an alert.
func (e *Email) Message(a services.Alert) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", e.cfg.From)
	m.SetHeader("To", e.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("[expensex] %s: %s", a.Title, a.Category))
	m.SetBody("text/plain", a.Body)
	m.AddAlternative("text/html", alertHTML(a))
	return m
}

func alertHTML(a services.Alert) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; background: #f5f5f5; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background: #fff; border-radius: 12px; padding: 30px;">
    <h2 style="color: #dc2626; margin-top: 0;">%s</h2>
    <p style="color: #333; line-height: 1.6;">%s</p>
    <p style="color: #6c757d; font-size: 12px;">%s</p>
  </div>
</body>
</html>`, html.EscapeString(a.Title), html.EscapeString(a.Body), a.RaisedAt.Format("2 Jan 2006 15:04"))
}
