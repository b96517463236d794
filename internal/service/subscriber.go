package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
	"newsletter-back/internal/repository"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type SubscriberRepository interface {
	InsertSubscriber(ctx context.Context, ext repository.RepoExtension, subscriber *model.Subscriber) error
	SelectSubscriberByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Subscriber, error)
	SelectSubscribers(ctx context.Context, ext repository.RepoExtension) ([]model.Subscriber, error)
	UpdateSubscriber(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, req *model.SubscriberUpdateRequest) (*model.Subscriber, error)
	DeleteSubscriber(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
	InsertTopics(ctx context.Context, ext repository.RepoExtension, subscriberID uuid.UUID, topicIDs []uuid.UUID) error
	DeleteTopics(ctx context.Context, ext repository.RepoExtension, subscriberID uuid.UUID, topicIDs []uuid.UUID) error
	DeleteAllTopics(ctx context.Context, ext repository.RepoExtension, subscriberID uuid.UUID) error
}

type SubscriberTopicRepository interface {
	SelectTopicsBySubscriber(ctx context.Context, ext repository.RepoExtension, subscriberID uuid.UUID) ([]model.Topic, error)
}

type SubscriberSentLogRepository interface {
	SelectSentLogsBySubscriber(ctx context.Context, ext repository.RepoExtension, subscriberID uuid.UUID) ([]model.SentLogWithContent, error)
	CountBySubscriber(ctx context.Context, ext repository.RepoExtension) (map[uuid.UUID]int, error)
}

type SubscriberService struct {
	db             TxBeginner
	subscriberRepo SubscriberRepository
	topicRepo      SubscriberTopicRepository
	sentLogRepo    SubscriberSentLogRepository
}

func NewSubscriberService(
	db TxBeginner,
	subscriberRepo SubscriberRepository,
	topicRepo SubscriberTopicRepository,
	sentLogRepo SubscriberSentLogRepository,
) *SubscriberService {
	return &SubscriberService{
		db:             db,
		subscriberRepo: subscriberRepo,
		topicRepo:      topicRepo,
		sentLogRepo:    sentLogRepo,
	}
}

func (s *SubscriberService) Create(ctx context.Context, req *model.SubscriberCreateRequest) (result *model.SubscriberWithTopics, err error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("email: %w", apperrors.ErrEmptyField)
	}

	subscriber := &model.Subscriber{
		ID:     uuid.New(),
		Email:  email,
		Name:   strings.TrimSpace(req.Name),
		Active: true,
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.subscriberRepo.InsertSubscriber(ctx, tx, subscriber); err != nil {
			return err
		}

		return s.subscriberRepo.InsertTopics(ctx, tx, subscriber.ID, req.TopicIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}

	return s.withTopics(ctx, subscriber)
}

func (s *SubscriberService) List(ctx context.Context) ([]model.SubscriberWithTopics, error) {
	subscribers, err := s.subscriberRepo.SelectSubscribers(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}

	counts, err := s.sentLogRepo.CountBySubscriber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count sent logs: %w", err)
	}

	result := make([]model.SubscriberWithTopics, 0, len(subscribers))
	for _, subscriber := range subscribers {
		topics, err := s.topicRepo.SelectTopicsBySubscriber(ctx, nil, subscriber.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get subscriber topics: %w", err)
		}

		result = append(result, model.SubscriberWithTopics{
			Subscriber:   subscriber,
			Topics:       topics,
			SentLogCount: counts[subscriber.ID],
		})
	}

	return result, nil
}

func (s *SubscriberService) Get(ctx context.Context, id uuid.UUID) (*model.SubscriberDetails, error) {
	subscriber, err := s.subscriberRepo.SelectSubscriberByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	topics, err := s.topicRepo.SelectTopicsBySubscriber(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber topics: %w", err)
	}

	logs, err := s.sentLogRepo.SelectSentLogsBySubscriber(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber sent logs: %w", err)
	}

	return &model.SubscriberDetails{
		Subscriber: *subscriber,
		Topics:     topics,
		SentLogs:   logs,
	}, nil
}

// Update patches the subscriber; a non-nil TopicIDs replaces its topic set.
func (s *SubscriberService) Update(ctx context.Context, id uuid.UUID, req *model.SubscriberUpdateRequest) (*model.SubscriberWithTopics, error) {
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email == "" {
			return nil, fmt.Errorf("email: %w", apperrors.ErrEmptyField)
		}

		req.Email = &email
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}

	var subscriber *model.Subscriber

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var err error

		subscriber, err = s.subscriberRepo.UpdateSubscriber(ctx, tx, id, req)
		if err != nil {
			return err
		}

		if req.TopicIDs == nil {
			return nil
		}

		if err := s.subscriberRepo.DeleteAllTopics(ctx, tx, id); err != nil {
			return err
		}

		return s.subscriberRepo.InsertTopics(ctx, tx, id, *req.TopicIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update subscriber: %w", err)
	}

	return s.withTopics(ctx, subscriber)
}

func (s *SubscriberService) Subscribe(ctx context.Context, id uuid.UUID, topicIDs []uuid.UUID) (*model.SubscriberWithTopics, error) {
	subscriber, err := s.subscriberRepo.SelectSubscriberByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	if err := s.subscriberRepo.InsertTopics(ctx, nil, id, topicIDs); err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	return s.withTopics(ctx, subscriber)
}

func (s *SubscriberService) Unsubscribe(ctx context.Context, id uuid.UUID, topicIDs []uuid.UUID) (*model.SubscriberWithTopics, error) {
	subscriber, err := s.subscriberRepo.SelectSubscriberByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	if err := s.subscriberRepo.DeleteTopics(ctx, nil, id, topicIDs); err != nil {
		return nil, fmt.Errorf("failed to unsubscribe: %w", err)
	}

	return s.withTopics(ctx, subscriber)
}

func (s *SubscriberService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.subscriberRepo.DeleteSubscriber(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}

	return nil
}

func (s *SubscriberService) withTopics(ctx context.Context, subscriber *model.Subscriber) (*model.SubscriberWithTopics, error) {
	topics, err := s.topicRepo.SelectTopicsBySubscriber(ctx, nil, subscriber.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber topics: %w", err)
	}

	return &model.SubscriberWithTopics{Subscriber: *subscriber, Topics: topics}, nil
}

func (s *SubscriberService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("%w, failed to roll back transaction: %w", err, rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
