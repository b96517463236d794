package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsletter-back/internal/model"
)

type TopicService interface {
	Create(ctx context.Context, req *model.TopicCreateRequest) (*model.Topic, error)
	List(ctx context.Context) ([]model.TopicWithCounts, error)
	Get(ctx context.Context, id uuid.UUID) (*model.TopicDetails, error)
	Update(ctx context.Context, id uuid.UUID, req *model.TopicUpdateRequest) (*model.Topic, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type TopicHandler struct {
	BaseHandler
	svc TopicService
}

func NewTopicHandler(svc TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

// CreateTopic
// @Summary Create a topic
// @Tags Topic
// @Accept json
// @Produce json
// @Param input body model.TopicCreateRequest true "Topic"
// @Success 201 {object} ResponseWithData{data=model.Topic}
// @Failure 400 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage "Name already taken"
// @Router /topics [post]
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	var req model.TopicCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	topic, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   topic,
	})
}

// ListTopics
// @Summary List topics with subscriber and content counts
// @Tags Topic
// @Produce json
// @Success 200 {object} ResponseWithData{data=[]model.TopicWithCounts}
// @Router /topics [get]
func (h *TopicHandler) ListTopics(c *gin.Context) {
	topics, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   topics,
	})
}

// GetTopic
// @Summary Get a topic with its subscribers and contents
// @Tags Topic
// @Produce json
// @Param id path string true "Topic UUID"
// @Success 200 {object} ResponseWithData{data=model.TopicDetails}
// @Failure 404 {object} ResponseWithMessage
// @Router /topics/{id} [get]
func (h *TopicHandler) GetTopic(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	topic, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   topic,
	})
}

// UpdateTopic
// @Summary Update a topic
// @Tags Topic
// @Accept json
// @Produce json
// @Param id path string true "Topic UUID"
// @Param input body model.TopicUpdateRequest true "Topic"
// @Success 200 {object} ResponseWithData{data=model.Topic}
// @Failure 404 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage
// @Router /topics/{id} [put]
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	var req model.TopicUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	topic, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   topic,
	})
}

// DeleteTopic
// @Summary Delete a topic with its contents
// @Tags Topic
// @Produce json
// @Param id path string true "Topic UUID"
// @Success 200 {object} ResponseWithMessage
// @Failure 404 {object} ResponseWithMessage
// @Router /topics/{id} [delete]
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "topic deleted",
	})
}
