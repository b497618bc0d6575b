// Package mailer renders HTML notification mail and delivers it over SMTP.
package mailer

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const companyName = "Lala Rental"

var ErrNoRecipients = errors.New("mailer: no recipients")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPMailer struct {
	cfg  Config
	send sendFunc
	now  func() time.Time
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Send delivers an HTML message. Auth is only negotiated when a username is configured.
func (m *SMTPMailer) Send(to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return ErrNoRecipients
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, auth, m.cfg.From, to, m.build(to, subject, htmlBody)); err != nil {
		return fmt.Errorf("mailer: send %q: %w", subject, err)
	}
	return nil
}

func (m *SMTPMailer) build(to []string, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", companyName), m.cfg.From))
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=UTF-8")
	header("X-Mailer", "Lala-Mailer")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	return buf.Bytes()
}
