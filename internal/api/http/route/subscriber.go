package route

import (
	"github.com/gin-gonic/gin"
)

type SubscriberHandler interface {
	CreateSubscriber(c *gin.Context)
	ListSubscribers(c *gin.Context)
	GetSubscriber(c *gin.Context)
	UpdateSubscriber(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
	DeleteSubscriber(c *gin.Context)
}

func RegisterSubscriberRoutes(g *gin.RouterGroup, h SubscriberHandler) {
	g.POST("", h.CreateSubscriber)
	g.GET("", h.ListSubscribers)
	g.GET("/:id", h.GetSubscriber)
	g.PUT("/:id", h.UpdateSubscriber)
	g.DELETE("/:id", h.DeleteSubscriber)

	g.POST("/:id/subscribe", h.Subscribe)
	g.POST("/:id/unsubscribe", h.Unsubscribe)
}
