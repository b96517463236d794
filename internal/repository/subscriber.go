package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
)

type SubscriberRepository struct {
	db *pgxpool.Pool
}

func NewSubscriberRepository(db *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) InsertSubscriber(ctx context.Context, ext RepoExtension, subscriber *model.Subscriber) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO newsletter.subscribers (id, email, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5);
	`

	now := time.Now()
	subscriber.CreatedAt = now
	subscriber.UpdatedAt = now

	if _, err := ext.Exec(ctx, query,
		subscriber.ID,
		subscriber.Email,
		subscriber.Name,
		subscriber.Active,
		now,
	); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return apperrors.ErrSubscriberAlreadyExists
		}

		return fmt.Errorf("failed to insert subscriber: %w", err)
	}

	return nil
}

func (r *SubscriberRepository) SelectSubscriberByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Subscriber, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, email, name, active, created_at, updated_at
		FROM newsletter.subscribers
		WHERE id = $1;
	`

	var subscriber model.Subscriber
	if err := ext.QueryRow(ctx, query, id).Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.Name,
		&subscriber.Active,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubscriberNotFound
		}

		return nil, fmt.Errorf("failed to select subscriber: %w", err)
	}

	return &subscriber, nil
}

func (r *SubscriberRepository) SelectSubscribers(ctx context.Context, ext RepoExtension) ([]model.Subscriber, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, email, name, active, created_at, updated_at
		FROM newsletter.subscribers
		ORDER BY created_at DESC;
	`

	rows, err := ext.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscribers: %w", err)
	}

	subscribers, err := pgx.CollectRows(rows, scanSubscriber)
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscribers: %w", err)
	}

	return subscribers, nil
}

// SelectSubscribersByTopic returns every subscriber of the topic, active or not.
func (r *SubscriberRepository) SelectSubscribersByTopic(ctx context.Context, ext RepoExtension, topicID uuid.UUID) ([]model.Subscriber, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT s.id, s.email, s.name, s.active, s.created_at, s.updated_at
		FROM newsletter.subscribers s
		JOIN newsletter.topic_subscribers ts ON ts.subscriber_id = s.id
		WHERE ts.topic_id = $1
		ORDER BY s.created_at;
	`

	rows, err := ext.Query(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to select topic subscribers: %w", err)
	}

	subscribers, err := pgx.CollectRows(rows, scanSubscriber)
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic subscribers: %w", err)
	}

	return subscribers, nil
}

func (r *SubscriberRepository) UpdateSubscriber(ctx context.Context, ext RepoExtension, id uuid.UUID, req *model.SubscriberUpdateRequest) (*model.Subscriber, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE newsletter.subscribers
		SET email = COALESCE($2, email),
		    name = COALESCE($3, name),
		    active = COALESCE($4, active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, name, active, created_at, updated_at;
	`

	var subscriber model.Subscriber
	if err := ext.QueryRow(ctx, query, id, req.Email, req.Name, req.Active).Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.Name,
		&subscriber.Active,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrSubscriberNotFound
		case pgErrorCode(err) == pgUniqueViolation:
			return nil, apperrors.ErrSubscriberAlreadyExists
		}

		return nil, fmt.Errorf("failed to update subscriber: %w", err)
	}

	return &subscriber, nil
}

func (r *SubscriberRepository) DeleteSubscriber(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `DELETE FROM newsletter.subscribers WHERE id = $1;`

	result, err := ext.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrSubscriberNotFound
	}

	return nil
}

func (r *SubscriberRepository) InsertTopics(ctx context.Context, ext RepoExtension, subscriberID uuid.UUID, topicIDs []uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	if len(topicIDs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO newsletter.topic_subscribers (topic_id, subscriber_id)
		SELECT UNNEST($2::uuid[]), $1
		ON CONFLICT DO NOTHING;
	`

	if _, err := ext.Exec(ctx, query, subscriberID, topicIDs); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.ErrTopicNotFound
		}

		return fmt.Errorf("failed to insert subscriber topics: %w", err)
	}

	return nil
}

func (r *SubscriberRepository) DeleteTopics(ctx context.Context, ext RepoExtension, subscriberID uuid.UUID, topicIDs []uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		DELETE FROM newsletter.topic_subscribers
		WHERE subscriber_id = $1 AND topic_id = ANY($2::uuid[]);
	`

	if _, err := ext.Exec(ctx, query, subscriberID, topicIDs); err != nil {
		return fmt.Errorf("failed to delete subscriber topics: %w", err)
	}

	return nil
}

func (r *SubscriberRepository) DeleteAllTopics(ctx context.Context, ext RepoExtension, subscriberID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `DELETE FROM newsletter.topic_subscribers WHERE subscriber_id = $1;`

	if _, err := ext.Exec(ctx, query, subscriberID); err != nil {
		return fmt.Errorf("failed to clear subscriber topics: %w", err)
	}

	return nil
}

func scanSubscriber(row pgx.CollectableRow) (model.Subscriber, error) {
	var subscriber model.Subscriber
	err := row.Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.Name,
		&subscriber.Active,
		&subscriber.CreatedAt,
		&subscriber.UpdatedAt,
	)

	return subscriber, err
}
