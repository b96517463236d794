package resend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/resend/resend-go/v3"

	"newsletter-back/pkg/mailer"
)

type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

// Sender implements mailer.Mailer using the Resend API.
type Sender struct {
	client *resend.Client
	from   string
}

func New(cfg Config) *Sender {
	return NewWithClient(cfg, nil)
}

// NewWithClient uses httpClient for API calls; nil means http.DefaultClient.
func NewWithClient(cfg Config, httpClient *http.Client) *Sender {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Sender{
		client: resend.NewCustomClient(httpClient, cfg.APIKey),
		from:   mailer.FormatAddress(cfg.SenderName, cfg.SenderEmail),
	}
}

func (s *Sender) Send(ctx context.Context, msg mailer.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}

	return nil
}
