package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"newsletter-back/internal/model"
	"newsletter-back/pkg/mailer"
)

func TestMailSender_Send(t *testing.T) {
	t.Parallel()

	m := newScriptedMailer()
	m.failFor("bad@example.com")
	m.panicFor("boom@example.com")

	s := NewMailSender(zap.NewNop(), m)
	ctx := context.Background()

	ok := s.Send(ctx, mailer.Message{To: "good@example.com", Subject: "s", Text: "t"})
	assert.True(t, ok.IsDelivered())
	assert.Empty(t, ok.Reason())
	assert.Equal(t, model.SentLogSuccess, ok.status())
	assert.Nil(t, ok.errorMessage())

	failed := s.Send(ctx, mailer.Message{To: "bad@example.com", Subject: "s", Text: "t"})
	assert.False(t, failed.IsDelivered())
	assert.Contains(t, failed.Reason(), "mailbox unavailable")
	assert.Equal(t, model.SentLogFailed, failed.status())

	panicked := s.Send(ctx, mailer.Message{To: "boom@example.com", Subject: "s", Text: "t"})
	assert.False(t, panicked.IsDelivered())
	assert.Contains(t, panicked.Reason(), "transport exploded")
}

func TestFailed_DefaultReason(t *testing.T) {
	t.Parallel()

	o := Failed("")
	assert.Equal(t, "failed to send email", o.Reason())
	assert.Equal(t, "failed to send email", *o.errorMessage())
}
