package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsletter-back/internal/model"
)

type SentLogRepository struct {
	db *pgxpool.Pool
}

func NewSentLogRepository(db *pgxpool.Pool) *SentLogRepository {
	return &SentLogRepository{db: db}
}

func (r *SentLogRepository) InsertSentLog(ctx context.Context, ext RepoExtension, log model.SentLog) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO newsletter.sent_logs (id, content_id, subscriber_id, status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`

	if _, err := ext.Exec(ctx, query,
		log.ID,
		log.ContentID,
		log.SubscriberID,
		log.Status,
		log.ErrorMessage,
		log.SentAt,
	); err != nil {
		return fmt.Errorf("failed to insert sent log: %w", err)
	}

	return nil
}

func (r *SentLogRepository) SelectSentLogsByContent(ctx context.Context, ext RepoExtension, contentID uuid.UUID) ([]model.SentLogWithSubscriber, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT l.id, l.content_id, l.subscriber_id, l.status, l.error_message, l.sent_at, s.email
		FROM newsletter.sent_logs l
		JOIN newsletter.subscribers s ON s.id = l.subscriber_id
		WHERE l.content_id = $1
		ORDER BY l.sent_at DESC;
	`

	rows, err := ext.Query(ctx, query, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select content sent logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SentLogWithSubscriber, error) {
		var l model.SentLogWithSubscriber
		err := row.Scan(&l.ID, &l.ContentID, &l.SubscriberID, &l.Status, &l.ErrorMessage, &l.SentAt, &l.SubscriberEmail)

		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan content sent logs: %w", err)
	}

	return logs, nil
}

func (r *SentLogRepository) SelectSentLogsBySubscriber(ctx context.Context, ext RepoExtension, subscriberID uuid.UUID) ([]model.SentLogWithContent, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT l.id, l.content_id, l.subscriber_id, l.status, l.error_message, l.sent_at, c.title
		FROM newsletter.sent_logs l
		JOIN newsletter.contents c ON c.id = l.content_id
		WHERE l.subscriber_id = $1
		ORDER BY l.sent_at DESC;
	`

	rows, err := ext.Query(ctx, query, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to select subscriber sent logs: %w", err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SentLogWithContent, error) {
		var l model.SentLogWithContent
		err := row.Scan(&l.ID, &l.ContentID, &l.SubscriberID, &l.Status, &l.ErrorMessage, &l.SentAt, &l.ContentTitle)

		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriber sent logs: %w", err)
	}

	return logs, nil
}

func (r *SentLogRepository) CountBySubscriber(ctx context.Context, ext RepoExtension) (map[uuid.UUID]int, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT subscriber_id, COUNT(*)
		FROM newsletter.sent_logs
		GROUP BY subscriber_id;
	`

	rows, err := ext.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count sent logs: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id    uuid.UUID
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sent log count: %w", err)
		}

		counts[id] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sent log counts: %w", err)
	}

	return counts, nil
}
