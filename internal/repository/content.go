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

const contentColumns = `c.id, c.topic_id, c.title, c.body, c.scheduled_time, c.sent, c.sent_at, c.status, c.claimed_at, c.created_at, c.updated_at`

type ContentRepository struct {
	db *pgxpool.Pool
}

func NewContentRepository(db *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) InsertContent(ctx context.Context, ext RepoExtension, content *model.Content) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO newsletter.contents (id, topic_id, title, body, scheduled_time, sent, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7, $7);
	`

	now := time.Now()
	content.Status = model.DispatchPending
	content.CreatedAt = now
	content.UpdatedAt = now

	if _, err := ext.Exec(ctx, query,
		content.ID,
		content.TopicID,
		content.Title,
		content.Body,
		content.ScheduledTime,
		content.Status,
		now,
	); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return apperrors.ErrTopicNotFound
		}

		return fmt.Errorf("failed to insert content: %w", err)
	}

	return nil
}

func (r *ContentRepository) SelectContentByID(ctx context.Context, ext RepoExtension, id uuid.UUID) (*model.ContentWithTopic, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT ` + contentColumns + `,
		       t.id, t.name, t.description, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM newsletter.sent_logs l WHERE l.content_id = c.id)
		FROM newsletter.contents c
		JOIN newsletter.topics t ON t.id = c.topic_id
		WHERE c.id = $1;
	`

	content, err := scanContentWithTopic(ext.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrContentNotFound
		}

		return nil, fmt.Errorf("failed to select content: %w", err)
	}

	return &content, nil
}

func (r *ContentRepository) SelectContents(ctx context.Context, ext RepoExtension, params model.ContentQueryParams) ([]model.ContentWithTopic, error) {
	if ext == nil {
		ext = r.db
	}

	query := `
		SELECT ` + contentColumns + `,
		       t.id, t.name, t.description, t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM newsletter.sent_logs l WHERE l.content_id = c.id)
		FROM newsletter.contents c
		JOIN newsletter.topics t ON t.id = c.topic_id
		WHERE true
	`
	args := []any{}
	argIndex := 1

	if params.TopicID != "" {
		query += fmt.Sprintf(" AND c.topic_id = $%d", argIndex)
		args = append(args, params.TopicID)
		argIndex++
	}

	if params.Sent != nil {
		query += fmt.Sprintf(" AND c.sent = $%d", argIndex)
		args = append(args, *params.Sent)
	}

	query += " ORDER BY c.scheduled_time DESC"

	rows, err := ext.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contents: %w", err)
	}

	contents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ContentWithTopic, error) {
		return scanContentWithTopic(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan contents: %w", err)
	}

	return contents, nil
}

func (r *ContentRepository) SelectContentsByTopic(ctx context.Context, ext RepoExtension, topicID uuid.UUID) ([]model.Content, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT ` + contentColumns + `
		FROM newsletter.contents c
		WHERE c.topic_id = $1
		ORDER BY c.scheduled_time DESC;
	`

	rows, err := ext.Query(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to select topic contents: %w", err)
	}

	contents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Content, error) {
		return scanContent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan topic contents: %w", err)
	}

	return contents, nil
}

func (r *ContentRepository) UpdateContent(ctx context.Context, ext RepoExtension, id uuid.UUID, req *model.ContentUpdateRequest) (*model.Content, error) {
	if ext == nil {
		ext = r.db
	}

	// A new scheduled_time only applies while the item is unsent.
	const query = `
		UPDATE newsletter.contents c
		SET title = COALESCE($2, c.title),
		    body = COALESCE($3, c.body),
		    scheduled_time = COALESCE($4, c.scheduled_time),
		    updated_at = NOW()
		WHERE c.id = $1
		  AND ($4::timestamptz IS NULL OR c.sent = false)
		RETURNING ` + contentColumns + `;
	`

	content, err := scanContent(ext.QueryRow(ctx, query, id, req.Title, req.Body, req.ScheduledTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missingOrSent(ctx, ext, id, req.ScheduledTime != nil)
		}

		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	return &content, nil
}

func (r *ContentRepository) missingOrSent(ctx context.Context, ext RepoExtension, id uuid.UUID, rescheduling bool) error {
	if !rescheduling {
		return apperrors.ErrContentNotFound
	}

	var sent bool

	err := ext.QueryRow(ctx, `SELECT sent FROM newsletter.contents WHERE id = $1;`, id).Scan(&sent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrContentNotFound
		}

		return fmt.Errorf("failed to check content: %w", err)
	}

	if sent {
		return apperrors.ErrContentAlreadySent
	}

	return apperrors.ErrContentNotFound
}

func (r *ContentRepository) DeleteContent(ctx context.Context, ext RepoExtension, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `DELETE FROM newsletter.contents WHERE id = $1;`

	result, err := ext.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrContentNotFound
	}

	return nil
}

func (r *ContentRepository) SelectStats(ctx context.Context, ext RepoExtension) (*model.ContentStats, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT
		    (SELECT COUNT(*) FROM newsletter.contents),
		    (SELECT COUNT(*) FROM newsletter.contents WHERE sent = true),
		    (SELECT COUNT(*) FROM newsletter.contents WHERE sent = false),
		    (SELECT COUNT(*) FROM newsletter.sent_logs),
		    (SELECT COUNT(*) FROM newsletter.sent_logs WHERE status = 'success'),
		    (SELECT COUNT(*) FROM newsletter.sent_logs WHERE status = 'failed');
	`

	var stats model.ContentStats
	if err := ext.QueryRow(ctx, query).Scan(
		&stats.TotalContent,
		&stats.SentContent,
		&stats.PendingContent,
		&stats.TotalSentLogs,
		&stats.SuccessfulSends,
		&stats.FailedSends,
	); err != nil {
		return nil, fmt.Errorf("failed to select content stats: %w", err)
	}

	return &stats, nil
}

func scanContent(row pgx.Row) (model.Content, error) {
	var content model.Content
	err := row.Scan(
		&content.ID,
		&content.TopicID,
		&content.Title,
		&content.Body,
		&content.ScheduledTime,
		&content.Sent,
		&content.SentAt,
		&content.Status,
		&content.ClaimedAt,
		&content.CreatedAt,
		&content.UpdatedAt,
	)

	return content, err
}

func scanContentWithTopic(row pgx.Row) (model.ContentWithTopic, error) {
	var content model.ContentWithTopic
	err := row.Scan(
		&content.ID,
		&content.TopicID,
		&content.Title,
		&content.Body,
		&content.ScheduledTime,
		&content.Sent,
		&content.SentAt,
		&content.Status,
		&content.ClaimedAt,
		&content.CreatedAt,
		&content.UpdatedAt,
		&content.Topic.ID,
		&content.Topic.Name,
		&content.Topic.Description,
		&content.Topic.CreatedAt,
		&content.Topic.UpdatedAt,
		&content.SentLogCount,
	)

	return content, err
}
