package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
)

// DispatchRepository is the store view used by the dispatch engine.
type DispatchRepository struct {
	db         *pgxpool.Pool
	sentLogs   *SentLogRepository
	outbox     *OutboxRepository
	eventTopic string
}

// NewDispatchRepository builds the store. An empty eventTopic disables
// outbox events on completion.
func NewDispatchRepository(db *pgxpool.Pool, sentLogs *SentLogRepository, outbox *OutboxRepository, eventTopic string) *DispatchRepository {
	return &DispatchRepository{
		db:         db,
		sentLogs:   sentLogs,
		outbox:     outbox,
		eventTopic: eventTopic,
	}
}

func (r *DispatchRepository) SelectDue(ctx context.Context, now time.Time) ([]model.DueContent, error) {
	const query = `
		SELECT ` + contentColumns + `,
		       t.id, t.name, t.description, t.created_at, t.updated_at
		FROM newsletter.contents c
		JOIN newsletter.topics t ON t.id = c.topic_id
		WHERE c.scheduled_time <= $1 AND c.sent = false
		ORDER BY c.scheduled_time;
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to select due content: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.DueContent, error) {
		return scanDueContent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan due content: %w", err)
	}

	if len(items) == 0 {
		return items, nil
	}

	if err := r.attachSubscribers(ctx, items); err != nil {
		return nil, err
	}

	return items, nil
}

// SelectDueByID loads one content item with its active recipients regardless
// of schedule or sent state.
func (r *DispatchRepository) SelectDueByID(ctx context.Context, id uuid.UUID) (*model.DueContent, error) {
	const query = `
		SELECT ` + contentColumns + `,
		       t.id, t.name, t.description, t.created_at, t.updated_at
		FROM newsletter.contents c
		JOIN newsletter.topics t ON t.id = c.topic_id
		WHERE c.id = $1;
	`

	item, err := scanDueContent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrContentNotFound
		}

		return nil, fmt.Errorf("failed to select content: %w", err)
	}

	items := []model.DueContent{item}
	if err := r.attachSubscribers(ctx, items); err != nil {
		return nil, err
	}

	return &items[0], nil
}

func (r *DispatchRepository) attachSubscribers(ctx context.Context, items []model.DueContent) error {
	const query = `
		SELECT ts.topic_id, s.id, s.email, s.name, s.active, s.created_at, s.updated_at
		FROM newsletter.topic_subscribers ts
		JOIN newsletter.subscribers s ON s.id = ts.subscriber_id
		WHERE s.active = true AND ts.topic_id = ANY($1::uuid[])
		ORDER BY s.created_at;
	`

	topicIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))

	for _, item := range items {
		if _, ok := seen[item.TopicID]; ok {
			continue
		}

		seen[item.TopicID] = struct{}{}
		topicIDs = append(topicIDs, item.TopicID)
	}

	rows, err := r.db.Query(ctx, query, topicIDs)
	if err != nil {
		return fmt.Errorf("failed to select active subscribers: %w", err)
	}
	defer rows.Close()

	byTopic := make(map[uuid.UUID][]model.Subscriber, len(topicIDs))
	for rows.Next() {
		var (
			topicID    uuid.UUID
			subscriber model.Subscriber
		)
		if err := rows.Scan(
			&topicID,
			&subscriber.ID,
			&subscriber.Email,
			&subscriber.Name,
			&subscriber.Active,
			&subscriber.CreatedAt,
			&subscriber.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan active subscriber: %w", err)
		}

		byTopic[topicID] = append(byTopic[topicID], subscriber)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating active subscribers: %w", err)
	}

	for i := range items {
		items[i].Subscribers = byTopic[items[i].TopicID]
	}

	return nil
}

// ClaimContent moves an unsent item to in_progress. It reports false when the
// item is already sent or another run holds a claim newer than staleBefore.
func (r *DispatchRepository) ClaimContent(ctx context.Context, id uuid.UUID, now, staleBefore time.Time) (bool, error) {
	const query = `
		UPDATE newsletter.contents
		SET status = 'in_progress', claimed_at = $2, updated_at = NOW()
		WHERE id = $1
		  AND sent = false
		  AND (status = 'pending' OR (status = 'in_progress' AND claimed_at < $3));
	`

	result, err := r.db.Exec(ctx, query, id, now, staleBefore)
	if err != nil {
		return false, fmt.Errorf("failed to claim content: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (r *DispatchRepository) InsertSentLog(ctx context.Context, log model.SentLog) error {
	return r.sentLogs.InsertSentLog(ctx, nil, log)
}

// CompleteContent marks the item sent and, when event is non-nil, enqueues it
// to the outbox in the same transaction.
func (r *DispatchRepository) CompleteContent(ctx context.Context, id uuid.UUID, sentAt time.Time, event *model.DispatchEvent) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("%w, failed to roll back transaction: %w", err, rErr)
		}
	}()

	const query = `
		UPDATE newsletter.contents
		SET sent = true,
		    sent_at = COALESCE(sent_at, $2),
		    status = 'sent',
		    claimed_at = NULL,
		    updated_at = NOW()
		WHERE id = $1;
	`

	result, err := tx.Exec(ctx, query, id, sentAt)
	if err != nil {
		return fmt.Errorf("failed to complete content: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrContentNotFound
	}

	if event != nil && r.eventTopic != "" {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal dispatch event: %w", err)
		}

		if err := r.outbox.InsertMessage(ctx, tx, model.OutboxMessage{
			ID:      uuid.New(),
			Topic:   r.eventTopic,
			Payload: payload,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func scanDueContent(row pgx.Row) (model.DueContent, error) {
	var item model.DueContent
	err := row.Scan(
		&item.ID,
		&item.TopicID,
		&item.Title,
		&item.Body,
		&item.ScheduledTime,
		&item.Sent,
		&item.SentAt,
		&item.Status,
		&item.ClaimedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Topic.ID,
		&item.Topic.Name,
		&item.Topic.Description,
		&item.Topic.CreatedAt,
		&item.Topic.UpdatedAt,
	)

	return item, err
}
