package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
)

var errStoreDown = errors.New("store is down")

// memStore mirrors the semantics of the postgres dispatch store.
type memStore struct {
	mu sync.Mutex

	topics      map[uuid.UUID]model.Topic
	subscribers map[uuid.UUID]model.Subscriber
	links       map[uuid.UUID][]uuid.UUID
	contents    map[uuid.UUID]*model.Content
	logs        []model.SentLog
	events      []model.DispatchEvent

	failSelect       error
	failInsertAfter  int
	failComplete     error
	failCompleteOnce bool
}

func newMemStore() *memStore {
	return &memStore{
		topics:          make(map[uuid.UUID]model.Topic),
		subscribers:     make(map[uuid.UUID]model.Subscriber),
		links:           make(map[uuid.UUID][]uuid.UUID),
		contents:        make(map[uuid.UUID]*model.Content),
		failInsertAfter: -1,
	}
}

func (s *memStore) addTopic() model.Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Topic{ID: uuid.New(), Name: gofakeit.Company() + " weekly"}
	s.topics[t.ID] = t

	return t
}

func (s *memStore) addSubscriber(topicID uuid.UUID, active bool) model.Subscriber {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := model.Subscriber{ID: uuid.New(), Email: gofakeit.Email(), Name: gofakeit.Name(), Active: active}
	s.subscribers[sub.ID] = sub
	s.links[topicID] = append(s.links[topicID], sub.ID)

	return sub
}

func (s *memStore) addContent(topicID uuid.UUID, scheduled time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &model.Content{
		ID:            uuid.New(),
		TopicID:       topicID,
		Title:         gofakeit.Company() + " digest",
		Body:          gofakeit.Word() + "\n" + gofakeit.Word(),
		ScheduledTime: scheduled,
		Status:        model.DispatchPending,
	}
	s.contents[c.ID] = c

	return c.ID
}

func (s *memStore) content(id uuid.UUID) model.Content {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.contents[id]
}

func (s *memStore) logsFor(id uuid.UUID) []model.SentLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.SentLog
	for _, l := range s.logs {
		if l.ContentID == id {
			out = append(out, l)
		}
	}

	return out
}

func (s *memStore) due(c *model.Content) model.DueContent {
	item := model.DueContent{Content: *c, Topic: s.topics[c.TopicID]}
	for _, subID := range s.links[c.TopicID] {
		if sub := s.subscribers[subID]; sub.Active {
			item.Subscribers = append(item.Subscribers, sub)
		}
	}

	return item
}

func (s *memStore) SelectDue(_ context.Context, now time.Time) ([]model.DueContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failSelect != nil {
		return nil, s.failSelect
	}

	var items []model.DueContent
	for _, c := range s.contents {
		if !c.Sent && !c.ScheduledTime.After(now) {
			items = append(items, s.due(c))
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ScheduledTime.Before(items[j].ScheduledTime) })

	return items, nil
}

func (s *memStore) SelectDueByID(_ context.Context, id uuid.UUID) (*model.DueContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contents[id]
	if !ok {
		return nil, apperrors.ErrContentNotFound
	}

	item := s.due(c)

	return &item, nil
}

func (s *memStore) ClaimContent(_ context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contents[id]
	if !ok || c.Sent {
		return false, nil
	}

	switch {
	case c.Status == model.DispatchPending:
	case c.Status == model.DispatchInProgress && c.ClaimedAt != nil && c.ClaimedAt.Before(staleBefore):
	default:
		return false, nil
	}

	c.Status = model.DispatchInProgress
	c.ClaimedAt = &now

	return true, nil
}

func (s *memStore) InsertSentLog(ctx context.Context, log model.SentLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.failInsertAfter == 0 {
		return errStoreDown
	}

	if s.failInsertAfter > 0 {
		s.failInsertAfter--
	}

	s.logs = append(s.logs, log)

	return nil
}

func (s *memStore) CompleteContent(ctx context.Context, id uuid.UUID, sentAt time.Time, event *model.DispatchEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.failComplete != nil {
		err := s.failComplete
		if s.failCompleteOnce {
			s.failComplete = nil
		}

		return err
	}

	c, ok := s.contents[id]
	if !ok {
		return apperrors.ErrContentNotFound
	}

	c.Sent = true
	if c.SentAt == nil {
		c.SentAt = &sentAt
	}
	c.Status = model.DispatchSent
	c.ClaimedAt = nil

	if event != nil {
		s.events = append(s.events, *event)
	}

	return nil
}
