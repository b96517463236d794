package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsletter-back/internal/model"
)

type SubscriberService interface {
	Create(ctx context.Context, req *model.SubscriberCreateRequest) (*model.SubscriberWithTopics, error)
	List(ctx context.Context) ([]model.SubscriberWithTopics, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SubscriberDetails, error)
	Update(ctx context.Context, id uuid.UUID, req *model.SubscriberUpdateRequest) (*model.SubscriberWithTopics, error)
	Subscribe(ctx context.Context, id uuid.UUID, topicIDs []uuid.UUID) (*model.SubscriberWithTopics, error)
	Unsubscribe(ctx context.Context, id uuid.UUID, topicIDs []uuid.UUID) (*model.SubscriberWithTopics, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubscriberHandler struct {
	BaseHandler
	svc SubscriberService
}

func NewSubscriberHandler(svc SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{svc: svc}
}

// CreateSubscriber
// @Summary Create a subscriber, optionally attached to topics
// @Tags Subscriber
// @Accept json
// @Produce json
// @Param input body model.SubscriberCreateRequest true "Subscriber"
// @Success 201 {object} ResponseWithData{data=model.SubscriberWithTopics}
// @Failure 400 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage "Email already subscribed"
// @Router /subscribers [post]
func (h *SubscriberHandler) CreateSubscriber(c *gin.Context) {
	var req model.SubscriberCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	subscriber, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   subscriber,
	})
}

// ListSubscribers
// @Summary List subscribers with their topics
// @Tags Subscriber
// @Produce json
// @Success 200 {object} ResponseWithData{data=[]model.SubscriberWithTopics}
// @Router /subscribers [get]
func (h *SubscriberHandler) ListSubscribers(c *gin.Context) {
	subscribers, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   subscribers,
	})
}

// GetSubscriber
// @Summary Get a subscriber with topics and delivery history
// @Tags Subscriber
// @Produce json
// @Param id path string true "Subscriber UUID"
// @Success 200 {object} ResponseWithData{data=model.SubscriberDetails}
// @Failure 404 {object} ResponseWithMessage
// @Router /subscribers/{id} [get]
func (h *SubscriberHandler) GetSubscriber(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	subscriber, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   subscriber,
	})
}

// UpdateSubscriber
// @Summary Update a subscriber; topic_ids replaces the topic set
// @Tags Subscriber
// @Accept json
// @Produce json
// @Param id path string true "Subscriber UUID"
// @Param input body model.SubscriberUpdateRequest true "Subscriber"
// @Success 200 {object} ResponseWithData{data=model.SubscriberWithTopics}
// @Failure 404 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage
// @Router /subscribers/{id} [put]
func (h *SubscriberHandler) UpdateSubscriber(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	var req model.SubscriberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	subscriber, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   subscriber,
	})
}

// Subscribe
// @Summary Attach a subscriber to topics
// @Tags Subscriber
// @Accept json
// @Produce json
// @Param id path string true "Subscriber UUID"
// @Param input body model.TopicIDsRequest true "Topics"
// @Success 200 {object} ResponseWithData{data=model.SubscriberWithTopics}
// @Failure 404 {object} ResponseWithMessage
// @Router /subscribers/{id}/subscribe [post]
func (h *SubscriberHandler) Subscribe(c *gin.Context) {
	h.changeTopics(c, h.svc.Subscribe)
}

// Unsubscribe
// @Summary Detach a subscriber from topics
// @Tags Subscriber
// @Accept json
// @Produce json
// @Param id path string true "Subscriber UUID"
// @Param input body model.TopicIDsRequest true "Topics"
// @Success 200 {object} ResponseWithData{data=model.SubscriberWithTopics}
// @Failure 404 {object} ResponseWithMessage
// @Router /subscribers/{id}/unsubscribe [post]
func (h *SubscriberHandler) Unsubscribe(c *gin.Context) {
	h.changeTopics(c, h.svc.Unsubscribe)
}

func (h *SubscriberHandler) changeTopics(
	c *gin.Context,
	apply func(ctx context.Context, id uuid.UUID, topicIDs []uuid.UUID) (*model.SubscriberWithTopics, error),
) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	var req model.TopicIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	subscriber, err := apply(c.Request.Context(), id, req.TopicIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   subscriber,
	})
}

// DeleteSubscriber
// @Summary Delete a subscriber
// @Tags Subscriber
// @Produce json
// @Param id path string true "Subscriber UUID"
// @Success 200 {object} ResponseWithMessage
// @Failure 404 {object} ResponseWithMessage
// @Router /subscribers/{id} [delete]
func (h *SubscriberHandler) DeleteSubscriber(c *gin.Context) {
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
		Message: "subscriber deleted",
	})
}
