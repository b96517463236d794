package model

import (
	"time"

	"github.com/google/uuid"
)

type OutboxMessage struct {
	ID        uuid.UUID  `db:"id"`
	Topic     string     `db:"topic"`
	Payload   []byte     `db:"payload"`
	CreatedAt time.Time  `db:"created_at"`
	Sent      bool       `db:"sent"`
	SentAt    *time.Time `db:"sent_at"`
}

// DispatchEvent is published once a content item has been dispatched.
type DispatchEvent struct {
	ContentID  uuid.UUID `json:"content_id"`
	TopicID    uuid.UUID `json:"topic_id"`
	Title      string    `json:"title"`
	Recipients int       `json:"recipients"`
	Delivered  int       `json:"delivered"`
	Failed     int       `json:"failed"`
	SentAt     time.Time `json:"sent_at"`
}
