package route

import (
	"github.com/gin-gonic/gin"
)

type ContentHandler interface {
	CreateContent(c *gin.Context)
	ListContents(c *gin.Context)
	GetContentStats(c *gin.Context)
	GetContent(c *gin.Context)
	UpdateContent(c *gin.Context)
	DeleteContent(c *gin.Context)
	DispatchContent(c *gin.Context)
}

func RegisterContentRoutes(g *gin.RouterGroup, h ContentHandler) {
	g.POST("", h.CreateContent)
	g.GET("", h.ListContents)
	g.GET("/stats", h.GetContentStats)
	g.GET("/:id", h.GetContent)
	g.PUT("/:id", h.UpdateContent)
	g.DELETE("/:id", h.DeleteContent)

	g.POST("/:id/dispatch", h.DispatchContent)
}
