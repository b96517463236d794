package model

import (
	"time"

	"github.com/google/uuid"
)

// DispatchStatus tracks a content item through dispatch.
// pending -> in_progress (claim mode only) -> sent.
type DispatchStatus string

const (
	DispatchPending    DispatchStatus = "pending"
	DispatchInProgress DispatchStatus = "in_progress"
	DispatchSent       DispatchStatus = "sent"
)

// Content is one newsletter issue with a scheduled delivery instant.
// Sent/SentAt/Status/ClaimedAt are written by the dispatcher only.
type Content struct {
	ID            uuid.UUID      `db:"id"             json:"id"`
	TopicID       uuid.UUID      `db:"topic_id"       json:"topicId"`
	Title         string         `db:"title"          json:"title"         example:"Issue #42"`
	Body          string         `db:"body"           json:"body"          example:"Hello readers,\nthis week..."`
	ScheduledTime time.Time      `db:"scheduled_time" json:"scheduledTime" example:"2026-01-02T15:04:05Z"`
	Sent          bool           `db:"sent"           json:"sent"`
	SentAt        *time.Time     `db:"sent_at"        json:"sentAt"`
	Status        DispatchStatus `db:"status"         json:"status"`
	ClaimedAt     *time.Time     `db:"claimed_at"     json:"-"`
	CreatedAt     time.Time      `db:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time      `db:"updated_at"     json:"updatedAt"`
}

type ContentWithTopic struct {
	Content
	Topic        Topic `json:"topic"`
	SentLogCount int   `json:"sentLogCount"`
}

type ContentDetails struct {
	Content
	Topic    Topic                   `json:"topic"`
	SentLogs []SentLogWithSubscriber `json:"sentLogs"`
}

// DueContent is a content item joined with its topic and the topic's
// active subscribers, as returned by the due-content query.
type DueContent struct {
	Content
	Topic       Topic
	Subscribers []Subscriber
}

type ContentCreateRequest struct {
	TopicID       uuid.UUID `binding:"required" json:"topic_id"`
	Title         string    `binding:"required" json:"title"          example:"Issue #42"`
	Body          string    `binding:"required" json:"body"           example:"Hello readers"`
	ScheduledTime time.Time `binding:"required" json:"scheduled_time" example:"2026-01-02T15:04:05Z"`
}

type ContentUpdateRequest struct {
	Title         *string    `json:"title,omitempty"`
	Body          *string    `json:"body,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

type ContentQueryParams struct {
	TopicID string `form:"topic_id" binding:"omitempty,uuid"`
	Sent    *bool  `form:"sent"`
}

type ContentStats struct {
	TotalContent    int `json:"totalContent"`
	SentContent     int `json:"sentContent"`
	PendingContent  int `json:"pendingContent"`
	TotalSentLogs   int `json:"totalSentLogs"`
	SuccessfulSends int `json:"successfulSends"`
	FailedSends     int `json:"failedSends"`
}
