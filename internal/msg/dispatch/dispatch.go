// Package dispatch delivers due newsletter content to topic subscribers.
//
// A Trigger fires the Dispatcher on a fixed cadence. Each run selects content
// whose scheduled time has passed and which is not yet sent, sends one email
// per active subscriber, appends one sent log per attempt and finally marks
// the content sent. Failed deliveries are recorded and never abort the run;
// store failures end the run and leave the remaining items for the next tick.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"newsletter-back/internal/model"
)

const (
	DefaultInterval   = time.Minute
	DefaultStaleAfter = 15 * time.Minute
)

// Store is the persistence view of the dispatch engine.
type Store interface {
	SelectDue(ctx context.Context, now time.Time) ([]model.DueContent, error)
	SelectDueByID(ctx context.Context, id uuid.UUID) (*model.DueContent, error)
	ClaimContent(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error)
	InsertSentLog(ctx context.Context, log model.SentLog) error
	CompleteContent(ctx context.Context, id uuid.UUID, sentAt time.Time, event *model.DispatchEvent) error
}

type Config struct {
	Interval time.Duration
	// Workers bounds concurrent sends for one content item; 1 is sequential.
	Workers int
	// ClaimEnabled guards items with a pending -> in_progress claim so a
	// crashed or overlapping run does not deliver twice until StaleAfter passes.
	ClaimEnabled  bool
	StaleAfter    time.Duration
	PublishEvents bool
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}

	if c.Workers <= 0 {
		c.Workers = 1
	}

	if c.StaleAfter <= 0 {
		c.StaleAfter = DefaultStaleAfter
	}

	return c
}

// Result summarizes the dispatch of one content item.
type Result struct {
	ContentID  uuid.UUID `json:"contentId"`
	Skipped    bool      `json:"skipped"`
	Recipients int       `json:"recipients"`
	Delivered  int       `json:"delivered"`
	Failed     int       `json:"failed"`
	SentAt     time.Time `json:"sentAt"`
}

// Report summarizes one run.
type Report struct {
	StartedAt time.Time
	Due       int
	Completed int
	Skipped   int
	Delivered int
	Failed    int
}

func (r *Report) add(res Result) {
	if res.Skipped {
		r.Skipped++
		return
	}

	r.Completed++
	r.Delivered += res.Delivered
	r.Failed += res.Failed
}
