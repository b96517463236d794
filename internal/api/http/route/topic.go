package route

import (
	"github.com/gin-gonic/gin"
)

type TopicHandler interface {
	CreateTopic(c *gin.Context)
	ListTopics(c *gin.Context)
	GetTopic(c *gin.Context)
	UpdateTopic(c *gin.Context)
	DeleteTopic(c *gin.Context)
}

func RegisterTopicRoutes(g *gin.RouterGroup, h TopicHandler) {
	g.POST("", h.CreateTopic)
	g.GET("", h.ListTopics)
	g.GET("/:id", h.GetTopic)
	g.PUT("/:id", h.UpdateTopic)
	g.DELETE("/:id", h.DeleteTopic)
}
