package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
	"newsletter-back/internal/msg/dispatch"
	"newsletter-back/internal/repository"
)

type ContentRepository interface {
	InsertContent(ctx context.Context, ext repository.RepoExtension, content *model.Content) error
	SelectContentByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.ContentWithTopic, error)
	SelectContents(ctx context.Context, ext repository.RepoExtension, params model.ContentQueryParams) ([]model.ContentWithTopic, error)
	UpdateContent(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, req *model.ContentUpdateRequest) (*model.Content, error)
	DeleteContent(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
	SelectStats(ctx context.Context, ext repository.RepoExtension) (*model.ContentStats, error)
}

type ContentSentLogRepository interface {
	SelectSentLogsByContent(ctx context.Context, ext repository.RepoExtension, contentID uuid.UUID) ([]model.SentLogWithSubscriber, error)
}

type ContentTopicRepository interface {
	SelectTopicByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Topic, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, id uuid.UUID) (dispatch.Result, error)
}

type ContentService struct {
	log         *zap.Logger
	contentRepo ContentRepository
	sentLogRepo ContentSentLogRepository
	topicRepo   ContentTopicRepository
	dispatcher  Dispatcher
}

func NewContentService(
	log *zap.Logger,
	contentRepo ContentRepository,
	sentLogRepo ContentSentLogRepository,
	topicRepo ContentTopicRepository,
	dispatcher Dispatcher,
) *ContentService {
	return &ContentService{
		log:         log,
		contentRepo: contentRepo,
		sentLogRepo: sentLogRepo,
		topicRepo:   topicRepo,
		dispatcher:  dispatcher,
	}
}

func (s *ContentService) Create(ctx context.Context, req *model.ContentCreateRequest) (*model.ContentWithTopic, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("title: %w", apperrors.ErrEmptyField)
	}

	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("body: %w", apperrors.ErrEmptyField)
	}

	topic, err := s.topicRepo.SelectTopicByID(ctx, nil, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	content := model.Content{
		ID:            uuid.New(),
		TopicID:       topic.ID,
		Title:         title,
		Body:          req.Body,
		ScheduledTime: req.ScheduledTime.UTC(),
	}

	if err := s.contentRepo.InsertContent(ctx, nil, &content); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	s.log.Info("Content scheduled",
		zap.String("content_id", content.ID.String()),
		zap.String("topic_id", topic.ID.String()),
		zap.Time("scheduled_time", content.ScheduledTime),
	)

	return &model.ContentWithTopic{Content: content, Topic: *topic}, nil
}

func (s *ContentService) List(ctx context.Context, params model.ContentQueryParams) ([]model.ContentWithTopic, error) {
	contents, err := s.contentRepo.SelectContents(ctx, nil, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list contents: %w", err)
	}

	return contents, nil
}

func (s *ContentService) Get(ctx context.Context, id uuid.UUID) (*model.ContentDetails, error) {
	content, err := s.contentRepo.SelectContentByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}

	logs, err := s.sentLogRepo.SelectSentLogsByContent(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get content sent logs: %w", err)
	}

	return &model.ContentDetails{
		Content:  content.Content,
		Topic:    content.Topic,
		SentLogs: logs,
	}, nil
}

// Update edits a content item. Rescheduling an already sent item is rejected.
func (s *ContentService) Update(ctx context.Context, id uuid.UUID, req *model.ContentUpdateRequest) (*model.Content, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("title: %w", apperrors.ErrEmptyField)
		}

		req.Title = &title
	}

	if req.Body != nil && strings.TrimSpace(*req.Body) == "" {
		return nil, fmt.Errorf("body: %w", apperrors.ErrEmptyField)
	}

	if req.ScheduledTime != nil {
		current, err := s.contentRepo.SelectContentByID(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get content: %w", err)
		}

		if current.Sent {
			return nil, apperrors.ErrContentAlreadySent
		}

		scheduled := req.ScheduledTime.UTC()
		req.ScheduledTime = &scheduled
	}

	content, err := s.contentRepo.UpdateContent(ctx, nil, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	return content, nil
}

func (s *ContentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.contentRepo.DeleteContent(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	return nil
}

func (s *ContentService) Stats(ctx context.Context) (*model.ContentStats, error) {
	stats, err := s.contentRepo.SelectStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get content stats: %w", err)
	}

	return stats, nil
}

// Dispatch sends a due item now. The run is detached from ctx so a dropped
// request cannot leave the item half delivered.
func (s *ContentService) Dispatch(ctx context.Context, id uuid.UUID) (*dispatch.Result, error) {
	res, err := s.dispatcher.Dispatch(context.WithoutCancel(ctx), id)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch content: %w", err)
	}

	return &res, nil
}
