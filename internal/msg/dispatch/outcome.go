package dispatch

import (
	"newsletter-back/internal/model"
)

// Outcome is the result of one delivery attempt: delivered, or failed with a reason.
type Outcome struct {
	delivered bool
	reason    string
}

func Delivered() Outcome {
	return Outcome{delivered: true}
}

func Failed(reason string) Outcome {
	if reason == "" {
		reason = "failed to send email"
	}

	return Outcome{reason: reason}
}

func (o Outcome) IsDelivered() bool {
	return o.delivered
}

func (o Outcome) Reason() string {
	return o.reason
}

func (o Outcome) status() model.SentLogStatus {
	if o.delivered {
		return model.SentLogSuccess
	}

	return model.SentLogFailed
}

func (o Outcome) errorMessage() *string {
	if o.delivered {
		return nil
	}

	reason := o.reason

	return &reason
}
