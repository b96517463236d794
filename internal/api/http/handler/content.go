package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsletter-back/internal/model"
	"newsletter-back/internal/msg/dispatch"
)

type ContentService interface {
	Create(ctx context.Context, req *model.ContentCreateRequest) (*model.ContentWithTopic, error)
	List(ctx context.Context, params model.ContentQueryParams) ([]model.ContentWithTopic, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ContentDetails, error)
	Update(ctx context.Context, id uuid.UUID, req *model.ContentUpdateRequest) (*model.Content, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*model.ContentStats, error)
	Dispatch(ctx context.Context, id uuid.UUID) (*dispatch.Result, error)
}

type ContentHandler struct {
	BaseHandler
	svc ContentService
}

func NewContentHandler(svc ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

// CreateContent
// @Summary Schedule a content item for a topic
// @Tags Content
// @Accept json
// @Produce json
// @Param input body model.ContentCreateRequest true "Content, scheduled_time in RFC3339"
// @Success 201 {object} ResponseWithData{data=model.ContentWithTopic}
// @Failure 400 {object} ResponseWithMessage
// @Failure 404 {object} ResponseWithMessage "Topic not found"
// @Router /content [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req model.ContentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	content, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, ResponseWithData{
		Status: StatusSuccess,
		Data:   content,
	})
}

// ListContents
// @Summary List content, optionally filtered by topic and sent state
// @Tags Content
// @Produce json
// @Param topic_id query string false "Topic UUID"
// @Param sent query bool false "Sent state"
// @Success 200 {object} ResponseWithData{data=[]model.ContentWithTopic}
// @Router /content [get]
func (h *ContentHandler) ListContents(c *gin.Context) {
	var params model.ContentQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BadRequest(c, err)
		return
	}

	contents, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   contents,
	})
}

// GetContentStats
// @Summary Content and delivery counters
// @Tags Content
// @Produce json
// @Success 200 {object} ResponseWithData{data=model.ContentStats}
// @Router /content/stats [get]
func (h *ContentHandler) GetContentStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   stats,
	})
}

// GetContent
// @Summary Get a content item with its delivery log
// @Tags Content
// @Produce json
// @Param id path string true "Content UUID"
// @Success 200 {object} ResponseWithData{data=model.ContentDetails}
// @Failure 404 {object} ResponseWithMessage
// @Router /content/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	content, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   content,
	})
}

// UpdateContent
// @Summary Update a content item
// @Description Rescheduling content that was already sent returns 409.
// @Tags Content
// @Accept json
// @Produce json
// @Param id path string true "Content UUID"
// @Param input body model.ContentUpdateRequest true "Content"
// @Success 200 {object} ResponseWithData{data=model.Content}
// @Failure 404 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage
// @Router /content/{id} [put]
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	var req model.ContentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	content, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   content,
	})
}

// DeleteContent
// @Summary Delete a content item
// @Tags Content
// @Produce json
// @Param id path string true "Content UUID"
// @Success 200 {object} ResponseWithMessage
// @Failure 404 {object} ResponseWithMessage
// @Router /content/{id} [delete]
func (h *ContentHandler) DeleteContent(c *gin.Context) {
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
		Message: "content deleted",
	})
}

// DispatchContent
// @Summary Dispatch a due content item now instead of waiting for the next tick
// @Tags Content
// @Produce json
// @Param id path string true "Content UUID"
// @Success 200 {object} ResponseWithData{data=dispatch.Result}
// @Failure 404 {object} ResponseWithMessage
// @Failure 409 {object} ResponseWithMessage "Already sent or being dispatched"
// @Failure 422 {object} ResponseWithMessage "Not due yet"
// @Router /content/{id}/dispatch [post]
func (h *ContentHandler) DispatchContent(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}

	res, err := h.svc.Dispatch(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   res,
	})
}
