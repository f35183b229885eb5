// AngelaMos | 2026
// mailer.go

// Package mail sends transactional notifications over SMTP. Sends are best
// effort: failures are logged and never propagate into the calling flow.
package mail

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/carterperez-dev/habitflow/internal/config"
)

type Mailer struct {
	cfg config.MailConfig
}

func NewMailer(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Enabled && m.cfg.Host != ""
}

// Send delivers a plain-text message. Returns false when mail is disabled
// or delivery failed; callers treat that as a skip, not an error.
func (m *Mailer) Send(to, subject, body string) bool {
	if !m.Enabled() {
		slog.Debug("mail disabled, skipping", "to", to, "subject", subject)
		return false
	}

	msg := m.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	err := smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, msg)
	if err != nil {
		slog.Error("mail delivery failed",
			"to", to,
			"subject", subject,
			"error", err,
		)
		return false
	}

	slog.Info("mail sent", "to", to, "subject", subject)
	return true
}

func (m *Mailer) buildMessage(to, subject, body string) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddress)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}
