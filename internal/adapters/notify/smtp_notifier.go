package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"congregation-api/internal/config"
	"congregation-api/internal/core/domain"
)

const defaultSendTimeout = 30 * time.Second

// Notifier errors
var (
	ErrMailDisabled  = errors.New("mail delivery is not configured")
	ErrInvalidHeader = errors.New("address or subject contains a line break")
)

// SMTPNotifier delivers plain-text mail through an SMTP relay
type SMTPNotifier struct {
	cfg config.SMTPConfig
}

// NewSMTPNotifier creates a new SMTP notifier
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	if !cfg.Enabled() {
		log.Println("⚠️ SMTP_HOST not set, outgoing mail is disabled")
	}
	return &SMTPNotifier{cfg: cfg}
}

// Send mails body to address. Every failure is a *domain.NotificationError.
func (n *SMTPNotifier) Send(ctx context.Context, address, subject, body string) error {
	if err := n.send(ctx, address, subject, body); err != nil {
		return &domain.NotificationError{Address: address, Err: err}
	}
	return nil
}

func (n *SMTPNotifier) send(ctx context.Context, address, subject, body string) error {
	if !n.cfg.Enabled() {
		return ErrMailDisabled
	}
	if strings.ContainsAny(address, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return ErrInvalidHeader
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(n.cfg.Host, n.cfg.Port))
	if err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultSendTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
			return err
		}
	}
	if n.cfg.User != "" {
		if err := c.Auth(smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)); err != nil {
			return err
		}
	}

	if err := c.Mail(n.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(address); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(n.cfg.From, address, subject, body, time.Now())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage renders an RFC 5322 plain-text message with CRLF line endings
func buildMessage(from, to, subject, body string, date time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", date.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}
