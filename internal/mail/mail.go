// Package mail sends plain-text notifications.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
)

// SMTPMailer sends mail through an authenticated SMTP relay.
type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string

	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{host: host, port: port, user: user, pass: pass, from: from, send: smtp.SendMail}
}

// Send delivers one message. net/smtp has no context support, so ctx is
// only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return errors.New("mail: empty recipient")
	}
	if strings.ContainsAny(to+subject, "\r\n") {
		return errors.New("mail: header contains line break")
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}
	if err := m.send(net.JoinHostPort(m.host, m.port), auth, m.from, []string{to}, buildMessage(m.from, to, subject, text)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, text string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogMailer writes messages to the log instead of sending them. Used when
// no SMTP host is configured in development.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, text string) error {
	log.Warn().Str("to", to).Str("subject", subject).Str("body", text).Msg("mail not sent, smtp disabled")
	return nil
}
