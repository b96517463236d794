package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
	"newsletter-back/internal/repository"
)

type TopicRepository interface {
	InsertTopic(ctx context.Context, ext repository.RepoExtension, topic *model.Topic) error
	SelectTopicByID(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) (*model.Topic, error)
	SelectTopics(ctx context.Context, ext repository.RepoExtension) ([]model.TopicWithCounts, error)
	UpdateTopic(ctx context.Context, ext repository.RepoExtension, id uuid.UUID, req *model.TopicUpdateRequest) (*model.Topic, error)
	DeleteTopic(ctx context.Context, ext repository.RepoExtension, id uuid.UUID) error
}

type TopicSubscriberRepository interface {
	SelectSubscribersByTopic(ctx context.Context, ext repository.RepoExtension, topicID uuid.UUID) ([]model.Subscriber, error)
}

type TopicContentRepository interface {
	SelectContentsByTopic(ctx context.Context, ext repository.RepoExtension, topicID uuid.UUID) ([]model.Content, error)
}

type TopicService struct {
	topicRepo      TopicRepository
	subscriberRepo TopicSubscriberRepository
	contentRepo    TopicContentRepository
}

func NewTopicService(topicRepo TopicRepository, subscriberRepo TopicSubscriberRepository, contentRepo TopicContentRepository) *TopicService {
	return &TopicService{
		topicRepo:      topicRepo,
		subscriberRepo: subscriberRepo,
		contentRepo:    contentRepo,
	}
}

func (s *TopicService) Create(ctx context.Context, req *model.TopicCreateRequest) (*model.Topic, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("name: %w", apperrors.ErrEmptyField)
	}

	topic := &model.Topic{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
	}

	if err := s.topicRepo.InsertTopic(ctx, nil, topic); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}

	return topic, nil
}

func (s *TopicService) List(ctx context.Context) ([]model.TopicWithCounts, error) {
	topics, err := s.topicRepo.SelectTopics(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}

	return topics, nil
}

func (s *TopicService) Get(ctx context.Context, id uuid.UUID) (*model.TopicDetails, error) {
	topic, err := s.topicRepo.SelectTopicByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}

	subscribers, err := s.subscriberRepo.SelectSubscribersByTopic(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic subscribers: %w", err)
	}

	contents, err := s.contentRepo.SelectContentsByTopic(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic contents: %w", err)
	}

	return &model.TopicDetails{
		Topic:       *topic,
		Subscribers: subscribers,
		Contents:    contents,
	}, nil
}

func (s *TopicService) Update(ctx context.Context, id uuid.UUID, req *model.TopicUpdateRequest) (*model.Topic, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, fmt.Errorf("name: %w", apperrors.ErrEmptyField)
	}

	topic, err := s.topicRepo.UpdateTopic(ctx, nil, id, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update topic: %w", err)
	}

	return topic, nil
}

func (s *TopicService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.topicRepo.DeleteTopic(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete topic: %w", err)
	}

	return nil
}
