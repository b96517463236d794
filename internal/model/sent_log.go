package model

import (
	"time"

	"github.com/google/uuid"
)

type SentLogStatus string

const (
	SentLogSuccess SentLogStatus = "success"
	SentLogFailed  SentLogStatus = "failed"
)

// SentLog is an append-only record of one delivery attempt.
type SentLog struct {
	ID           uuid.UUID     `db:"id"            json:"id"`
	ContentID    uuid.UUID     `db:"content_id"    json:"contentId"`
	SubscriberID uuid.UUID     `db:"subscriber_id" json:"subscriberId"`
	Status       SentLogStatus `db:"status"        json:"status"`
	ErrorMessage *string       `db:"error_message" json:"errorMessage"`
	SentAt       time.Time     `db:"sent_at"       json:"sentAt"`
}

type SentLogWithSubscriber struct {
	SentLog
	SubscriberEmail string `json:"subscriberEmail"`
}

type SentLogWithContent struct {
	SentLog
	ContentTitle string `json:"contentTitle"`
}
