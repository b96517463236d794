package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"newsletter-back/internal/service"
)

type HealthService interface {
	Check(ctx context.Context) (*service.HealthStatus, error)
}

type HealthHandler struct {
	BaseHandler

	log *zap.Logger
	svc HealthService
}

func NewHealthHandler(log *zap.Logger, svc HealthService) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{},
		log:         log,
		svc:         svc,
	}
}

// Ping
// @Summary Liveness probe.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithMessage
// @Router /health/ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, ResponseWithMessage{
		Status:  StatusSuccess,
		Message: "pong",
	})
}

// Health
// @Summary Readiness probe, pings the database and redis.
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseWithData{data=service.HealthStatus}
// @Failure 503 {object} ResponseWithData{data=service.HealthStatus}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, err := h.svc.Check(c.Request.Context())
	if err != nil {
		h.log.Warn("Health check failed", zap.Error(err))

		c.JSON(http.StatusServiceUnavailable, ResponseWithData{
			Status: StatusErr,
			Data:   status,
		})

		return
	}

	c.JSON(http.StatusOK, ResponseWithData{
		Status: StatusSuccess,
		Data:   status,
	})
}
