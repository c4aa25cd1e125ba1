package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"hrms/internal/platform/config"
)

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
	HTML    bool
}

// Mailer is the transport. Sender builds on top of it.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg Message) error {
	return nil
}

type smtpMailer struct {
	cfg config.Config
}

func NewMailer(cfg config.Config) Mailer {
	if !cfg.EmailEnabled || cfg.SMTPHost == "" {
		return noopMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (s *smtpMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.SMTPUseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.SMTPHost}); err != nil {
			return err
		}
	}

	if s.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return err
	}
	if err := client.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(buildMessage(msg)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(msg Message) []byte {
	contentType := "text/plain"
	if msg.HTML {
		contentType = "text/html"
	}
	headers := []string{
		"From: " + headerValue(msg.From),
		"To: " + headerValue(msg.To),
		"Subject: " + mime.QEncoding.Encode("utf-8", headerValue(msg.Subject)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"", contentType),
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + msg.Body)
}

// headerValue folds line breaks into spaces so a value stays on its header line.
func headerValue(v string) string {
	return strings.TrimSpace(headerBreaks.Replace(v))
}

var headerBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
