package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter-back/internal/model"
)

type OutboxRepository struct {
	db *pgxpool.Pool
}

func NewOutboxRepository(db *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{
		db: db,
	}
}

func (r *OutboxRepository) InsertMessage(ctx context.Context, ext RepoExtension, message model.OutboxMessage) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO messages.outbox_messages (id, topic, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING;
	`

	if _, err := ext.Exec(ctx, query, message.ID, message.Topic, message.Payload); err != nil {
		return fmt.Errorf("failed to insert outbox message: %w", err)
	}

	return nil
}

func (r *OutboxRepository) UpdateAsSent(ctx context.Context, ext RepoExtension, messageID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE messages.outbox_messages
		SET sent = true, sent_at = NOW()
		WHERE id = $1;
	`

	if _, err := ext.Exec(ctx, query, messageID); err != nil {
		return fmt.Errorf("failed to mark outbox message as sent: %w", err)
	}

	return nil
}

func (r *OutboxRepository) SelectUnsentBatch(ctx context.Context, ext RepoExtension, batchSize int) ([]model.OutboxMessage, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, topic, payload, created_at, sent, sent_at
		FROM messages.outbox_messages
		WHERE sent = false
		ORDER BY created_at
		LIMIT $1;
	`

	rows, err := ext.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsent outbox messages: %w", err)
	}

	messages, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.OutboxMessage, error) {
		var message model.OutboxMessage
		err := row.Scan(
			&message.ID,
			&message.Topic,
			&message.Payload,
			&message.CreatedAt,
			&message.Sent,
			&message.SentAt,
		)

		return message, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan outbox messages: %w", err)
	}

	return messages, nil
}
