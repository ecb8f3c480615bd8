package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/JoaquinAb/web-alquiler/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending emails with PDF attachments.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	cb       *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		cb:       NewCircuitBreaker(DefaultCBConfig()),
	}
}

// EnviarAdjunto sends body to `to` with a single in-memory attachment.
func (m *Mailer) EnviarAdjunto(to, subject, body, filename string, contenido []byte) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if _, err := e.Attach(bytes.NewReader(contenido), filename, "application/pdf"); err != nil {
		return fmt.Errorf("mailer: attach %s: %w", filename, err)
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error { return e.Send(m.addr, auth) })
}

// Estado exposes the SMTP breaker state for /health.
func (m *Mailer) Estado() CBState { return m.cb.State() }
