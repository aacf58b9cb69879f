package lantern

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email is one outbound message. When HTML is set it is sent as the body
// in place of Text.
type Email struct {
	To      string
	From    string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers outbound mail. The contact endpoint is its only caller.
type Mailer interface {
	Send(msg Email) error
}

// SMTPMailer delivers mail over plain SMTP with optional AUTH.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a Mailer from SMTP settings.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(msg Email) error {
	if msg.From == "" {
		msg.From = m.cfg.From
	}
	if msg.To == "" {
		msg.To = m.cfg.To
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", msg.From)
	fmt.Fprintf(&body, "To: %s\r\n", msg.To)
	fmt.Fprintf(&body, "Subject: %s\r\n", msg.Subject)
	if msg.HTML != "" {
		body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=utf-8\r\n\r\n")
		body.WriteString(msg.HTML)
	} else {
		body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
		body.WriteString(msg.Text)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, msg.From, []string{msg.To}, []byte(body.String())); err != nil {
		return fmt.Errorf("sending mail via %s: %w", addr, err)
	}
	return nil
}
