package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"newsletter-back/internal/apperrors"
	"newsletter-back/internal/model"
)

const (
	StatusErr           = "error"
	StatusSuccess       = "success"
	StatusNotAvailable  = "not available"
	StatusInvalidInput  = "invalid_input"
	StatusInternalError = "internal_error"
	StatusRateLimited   = "rate_limited"
)

type BaseHandler struct{}

// PathID binds and parses the :id path parameter, writing a 400 on failure.
func (h *BaseHandler) PathID(c *gin.Context) (uuid.UUID, bool) {
	var uri model.IDPathParam
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusInvalidInput,
			Message: err.Error(),
		})

		return uuid.Nil, false
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseWithMessage{
			Status:  StatusInvalidInput,
			Message: "invalid id format",
		})

		return uuid.Nil, false
	}

	return id, true
}

// Error maps service errors to HTTP statuses.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	status, body := http.StatusInternalServerError, StatusInternalError

	switch {
	case errors.Is(err, apperrors.ErrTopicNotFound),
		errors.Is(err, apperrors.ErrSubscriberNotFound),
		errors.Is(err, apperrors.ErrContentNotFound):
		status, body = http.StatusNotFound, StatusErr
	case errors.Is(err, apperrors.ErrTopicAlreadyExists),
		errors.Is(err, apperrors.ErrSubscriberAlreadyExists),
		errors.Is(err, apperrors.ErrContentAlreadySent),
		errors.Is(err, apperrors.ErrContentClaimed):
		status, body = http.StatusConflict, StatusErr
	case errors.Is(err, apperrors.ErrContentNotDue):
		status, body = http.StatusUnprocessableEntity, StatusErr
	case errors.Is(err, apperrors.ErrEmptyField):
		status, body = http.StatusBadRequest, StatusInvalidInput
	}

	c.JSON(status, ResponseWithMessage{
		Status:  body,
		Message: err.Error(),
	})
}

func (h *BaseHandler) BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ResponseWithMessage{
		Status:  StatusInvalidInput,
		Message: err.Error(),
	})
}

// ResponseWithData
// @Description Generic success/error response carrying a payload.
type ResponseWithData struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
} // @Name _ResponseWithData

// ResponseWithMessage
// @Description Generic response carrying a human-readable message.
type ResponseWithMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
} // @Name _ResponseWithMessage

func NoMethod(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "method not allowed on this endpoint",
	})
}

func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ResponseWithMessage{
		Status:  StatusNotAvailable,
		Message: "page not found",
	})
}
