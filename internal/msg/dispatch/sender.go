package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"newsletter-back/pkg/mailer"
)

type Sender interface {
	Send(ctx context.Context, msg mailer.Message) Outcome
}

// MailSender adapts a mailer.Mailer to Sender. Transport errors and panics
// become failed outcomes.
type MailSender struct {
	l      *zap.Logger
	mailer mailer.Mailer
}

func NewMailSender(l *zap.Logger, m mailer.Mailer) *MailSender {
	return &MailSender{
		l:      l,
		mailer: m,
	}
}

func (s *MailSender) Send(ctx context.Context, msg mailer.Message) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("Mailer panicked", zap.String("to", msg.To), zap.Any("panic", r))
			out = Failed(fmt.Sprintf("mailer panic: %v", r))
		}
	}()

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.l.Warn("Failed to send email", zap.String("to", msg.To), zap.Error(err))
		return Failed(err.Error())
	}

	s.l.Debug("Email sent", zap.String("to", msg.To))

	return Delivered()
}
