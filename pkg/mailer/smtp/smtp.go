package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"newsletter-back/pkg/mailer"
)

const defaultTimeout = 30 * time.Second

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // "Name <no-reply@newsletter.local>" or just "no-reply@newsletter.local"
	UseTLS   bool   // implicit TLS (465); otherwise plain TCP upgraded with STARTTLS when offered
	Timeout  time.Duration
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	raw, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	c, err := m.open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	if err := c.Mail(mailer.ParseAddress(m.cfg.From)); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}

	if err := c.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}

	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return c.Quit()
}

// Verify connects, authenticates and issues NOOP without sending mail.
func (m *Mailer) Verify(ctx context.Context) error {
	c, err := m.open(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	if err := c.Noop(); err != nil {
		return fmt.Errorf("noop: %w", err)
	}

	return c.Quit()
}

func (m *Mailer) open(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	dialer := &net.Dialer{Timeout: m.cfg.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}

	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = conn.SetDeadline(deadline)

	secure := m.cfg.UseTLS
	if secure {
		conn = tls.Client(conn, &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12})
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("new client: %w", err)
	}

	if !secure {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("starttls: %w", err)
			}

			secure = true
		}
	}

	// AUTH only over an encrypted channel, PlainAuth refuses otherwise
	if secure && m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := c.Auth(auth); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("auth: %w", err)
		}
	}

	return c, nil
}

func buildMessage(from string, msg mailer.Message) ([]byte, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	}

	for _, p := range parts {
		if p.content == "" {
			continue
		}

		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {p.contentType},
			"Content-Transfer-Encoding": {"8bit"},
		})
		if err != nil {
			return nil, err
		}

		if _, err := w.Write([]byte(normalizeNewlines(p.content))); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", msg.To),
		fmt.Sprintf("Subject: %s", mime.QEncoding.Encode("UTF-8", msg.Subject)),
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
	}

	return append([]byte(strings.Join(headers, "\r\n")+"\r\n\r\n"), body.Bytes()...), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
