package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"stockwatch/internal/models"
)

// Sender delivers an alert to a destination. Implementations report plain
// success or failure; retries are the caller's concern.
type Sender interface {
	Send(ctx context.Context, dest models.Destination, subject, body string) error
}

// SMTPSender delivers alerts over SMTP, typically through an email-to-SMS
// carrier gateway
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSMTPSender creates an SMTP sender. The timeout bounds the whole
// delivery, dial included; expiry counts as a failed send.
func NewSMTPSender(host, port, username, password, from string, timeout time.Duration, logger *slog.Logger) *SMTPSender {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
		logger:   logger,
	}
}

// Send delivers one message to the resolved destination address
func (s *SMTPSender) Send(ctx context.Context, dest models.Destination, subject, body string) error {
	if s.username == "" || s.password == "" {
		return fmt.Errorf("smtp credentials not configured")
	}

	to, err := ResolveAddress(dest)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(s.host, s.port), time.Until(deadline))
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("failed to start tls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail command failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt command failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data command failed: %w", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.Debug("smtp quit failed", "error", err)
	}

	s.logger.Info("alert delivered", "to", to)
	return nil
}
