package model

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a named delivery channel grouping subscribers and content.
type Topic struct {
	ID          uuid.UUID `db:"id"          json:"id"          example:"7b2aab2e-4d1f-45b5-90c5-4d5d4db5ef11"`
	Name        string    `db:"name"        json:"name"        example:"Go Weekly"`
	Description string    `db:"description" json:"description" example:"Curated Go links every Monday"`
	CreatedAt   time.Time `db:"created_at"  json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updatedAt"`
}

type TopicWithCounts struct {
	Topic
	SubscriberCount int `json:"subscriberCount"`
	ContentCount    int `json:"contentCount"`
}

type TopicDetails struct {
	Topic
	Subscribers []Subscriber `json:"subscribers"`
	Contents    []Content    `json:"contents"`
}

type TopicCreateRequest struct {
	Name        string `binding:"required" json:"name"        example:"Go Weekly"`
	Description string `json:"description" example:"Curated Go links every Monday"`
}

type TopicUpdateRequest struct {
	Name        string  `binding:"required" json:"name"        example:"Go Weekly"`
	Description *string `json:"description,omitempty"`
}

type IDPathParam struct {
	ID string `uri:"id" binding:"required,uuid" example:"7b2aab2e-4d1f-45b5-90c5-4d5d4db5ef11"`
}
