package dispatch

import (
	"context"
	"fmt"
	"time"

	"newsletter-back/internal/model"
)

type Selector struct {
	store Store
}

func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// Select returns unsent content scheduled at or before now, each with the
// active subscribers of its topic.
func (s *Selector) Select(ctx context.Context, now time.Time) ([]model.DueContent, error) {
	items, err := s.store.SelectDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select due content: %w", err)
	}

	due := items[:0]
	for _, item := range items {
		if item.Sent || item.ScheduledTime.After(now) {
			continue
		}

		item.Subscribers = activeOnly(item.Subscribers)
		due = append(due, item)
	}

	return due, nil
}

func activeOnly(subscribers []model.Subscriber) []model.Subscriber {
	active := make([]model.Subscriber, 0, len(subscribers))
	for _, s := range subscribers {
		if s.Active {
			active = append(active, s)
		}
	}

	return active
}
