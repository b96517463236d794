package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
		err  error
	}{
		{"ok text only", Message{To: "a@b.c", Subject: "s", Text: "t"}, nil},
		{"ok html only", Message{To: "a@b.c", Subject: "s", HTML: "<p>t</p>"}, nil},
		{"no recipient", Message{To: " ", Subject: "s", Text: "t"}, ErrNoRecipient},
		{"no subject", Message{To: "a@b.c", Text: "t"}, ErrNoSubject},
		{"no content", Message{To: "a@b.c", Subject: "s"}, ErrNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.msg.Validate(), tt.err)
		})
	}
}

func TestFormatAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"Newsletter Service" <news@example.com>`, FormatAddress("Newsletter Service", "news@example.com"))
	assert.Equal(t, "news@example.com", FormatAddress("", "news@example.com"))
}

func TestParseAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no-reply@example.com", ParseAddress(`"News" <no-reply@example.com>`))
	assert.Equal(t, "no-reply@example.com", ParseAddress(" no-reply@example.com "))
	assert.Equal(t, "broken <", ParseAddress("broken <"))
}
