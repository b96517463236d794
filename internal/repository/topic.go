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

type TopicRepository struct {
	db *pgxpool.Pool
}

func NewTopicRepository(db *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{db: db}
}

func (r *TopicRepository) InsertTopic(ctx context.Context, ext RepoExtension, topic *model.Topic) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO newsletter.topics (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4);
	`

	now := time.Now()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	if _, err := ext.Exec(ctx, query, topic.ID, topic.Name, topic.Description, now); err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return apperrors.ErrTopicAlreadyExists
		}

		return fmt.Errorf("failed to insert topic: %w", err)
	}

	return nil
}

func (r *TopicRepository) SelectTopicByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.Topic, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, name, description, created_at, updated_at
		FROM newsletter.topics
		WHERE id = $1;
	`

	var topic model.Topic
	if err := ext.QueryRow(ctx, query, id).Scan(
		&topic.ID,
		&topic.Name,
		&topic.Description,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTopicNotFound
		}

		return nil, fmt.Errorf("failed to select topic: %w", err)
	}

	return &topic, nil
}

func (r *TopicRepository) SelectTopics(ctx context.Context, ext RepoExtension) ([]model.TopicWithCounts, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM newsletter.topic_subscribers ts WHERE ts.topic_id = t.id),
		       (SELECT COUNT(*) FROM newsletter.contents c WHERE c.topic_id = t.id)
		FROM newsletter.topics t
		ORDER BY t.created_at DESC;
	`

	rows, err := ext.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select topics: %w", err)
	}
	defer rows.Close()

	topics := make([]model.TopicWithCounts, 0)
	for rows.Next() {
		var topic model.TopicWithCounts
		if err := rows.Scan(
			&topic.ID,
			&topic.Name,
			&topic.Description,
			&topic.CreatedAt,
			&topic.UpdatedAt,
			&topic.SubscriberCount,
			&topic.ContentCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}

		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating topic rows: %w", err)
	}

	return topics, nil
}

func (r *TopicRepository) UpdateTopic(ctx context.Context, ext RepoExtension, id uuid.UUID, req *model.TopicUpdateRequest) (*model.Topic, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE newsletter.topics
		SET name = $2,
		    description = COALESCE($3, description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, description, created_at, updated_at;
	`

	var topic model.Topic
	if err := ext.QueryRow(ctx, query, id, req.Name, req.Description).Scan(
		&topic.ID,
		&topic.Name,
		&topic.Description,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.ErrTopicNotFound
		case pgErrorCode(err) == pgUniqueViolation:
			return nil, apperrors.ErrTopicAlreadyExists
		}

		return nil, fmt.Errorf("failed to update topic: %w", err)
	}

	return &topic, nil
}

func (r *TopicRepository) DeleteTopic(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `DELETE FROM newsletter.topics WHERE id = $1;`

	result, err := ext.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTopicNotFound
	}

	return nil
}

func (r *TopicRepository) SelectTopicsBySubscriber(ctx context.Context, ext RepoExtension, subscriberID uuid.UUID) ([]model.Topic, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT t.id, t.name, t.description, t.created_at, t.updated_at
		FROM newsletter.topics t
		JOIN newsletter.topic_subscribers ts ON ts.topic_id = t.id
		WHERE ts.subscriber_id = $1
		ORDER BY t.name;
	`

	rows, err := ext.Query(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscriber topics: %w", err)
	}

	topics, err := pgx.CollectRows(rows, scanTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriber topics: %w", err)
	}

	return topics, nil
}

func scanTopic(row pgx.CollectableRow) (model.Topic, error) {
	var topic model.Topic
	err := row.Scan(
		&topic.ID,
		&topic.Name,
		&topic.Description,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)

	return topic, err
}
