package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers a single message. Delivery failures must surface to
// the caller; a silently dropped verification email strands the user.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPConfig struct {
	Host       string
	Port       string
	SenderName string
	Email      string
	Password   string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	from := fmt.Sprintf("%s <%s>", m.cfg.SenderName, m.cfg.Email)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body)

	auth := smtp.PlainAuth("", m.cfg.Email, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(m.cfg.Host+":"+m.cfg.Port, auth, m.cfg.Email, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

var _ Sender = (*SMTPMailer)(nil)
