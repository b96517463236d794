package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoRecipient = errors.New("mailer: message has no recipient")
	ErrNoSubject   = errors.New("mailer: message has no subject")
	ErrNoContent   = errors.New("mailer: message has no content")
)

// Message is one email to one recipient. Text is the plain-text part,
// HTML the alternative part; at least one of them must be set.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}

	if strings.TrimSpace(m.Subject) == "" {
		return ErrNoSubject
	}

	if m.Text == "" && m.HTML == "" {
		return ErrNoContent
	}

	return nil
}

// Mailer delivers a single message. Implementations do not retry or queue.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Verifier is implemented by transports that can check their configuration
// without sending anything.
type Verifier interface {
	Verify(ctx context.Context) error
}

// FormatAddress renders `"Name" <email>`, or just the email when name is empty.
func FormatAddress(name, email string) string {
	if name == "" {
		return email
	}

	return fmt.Sprintf("%q <%s>", name, email)
}

// ParseAddress extracts the bare email from `Name <email>`.
func ParseAddress(from string) string {
	if i := strings.Index(from, "<"); i >= 0 {
		if j := strings.Index(from[i:], ">"); j > 0 {
			return strings.TrimSpace(from[i+1 : i+j])
		}
	}

	return strings.TrimSpace(from)
}
