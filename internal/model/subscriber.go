package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber receives content of the topics it is attached to while Active.
type Subscriber struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Email     string    `db:"email"      json:"email"  example:"reader@example.com"`
	Name      string    `db:"name"       json:"name"   example:"Jane Reader"`
	Active    bool      `db:"active"     json:"active" example:"true"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type SubscriberWithTopics struct {
	Subscriber
	Topics       []Topic `json:"topics"`
	SentLogCount int     `json:"sentLogCount"`
}

type SubscriberDetails struct {
	Subscriber
	Topics   []Topic              `json:"topics"`
	SentLogs []SentLogWithContent `json:"sentLogs"`
}

type SubscriberCreateRequest struct {
	Email    string      `binding:"required,email" json:"email" example:"reader@example.com"`
	Name     string      `json:"name" example:"Jane Reader"`
	TopicIDs []uuid.UUID `json:"topic_ids"`
}

// SubscriberUpdateRequest replaces the topic set when TopicIDs is present.
type SubscriberUpdateRequest struct {
	Email    *string      `binding:"omitempty,email" json:"email,omitempty"`
	Name     *string      `json:"name,omitempty"`
	Active   *bool        `json:"active,omitempty"`
	TopicIDs *[]uuid.UUID `json:"topic_ids,omitempty"`
}

type TopicIDsRequest struct {
	TopicIDs []uuid.UUID `binding:"required" json:"topic_ids"`
}
