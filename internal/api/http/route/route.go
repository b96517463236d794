package route

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"newsletter-back/internal/api/http/handler"
	"newsletter-back/internal/api/http/middleware"
	"newsletter-back/internal/config"
)

// Handlers groups everything the router serves. Metrics may be nil.
type Handlers struct {
	Health     HealthHandler
	Topic      TopicHandler
	Subscriber SubscriberHandler
	Content    ContentHandler
	Metrics    http.Handler
}

// SetupRouter builds the engine. rdb enables rate limiting when non-nil.
func SetupRouter(log *zap.Logger, cfg *config.Config, rdb *goredis.Client, hdl Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	router := gin.New()
	router.Use(gin.Recovery())

	// middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.RequestTimeout(cfg.HTTPServer.Timeout.Request))
	router.Use(middleware.CORS(cfg.CORS))

	router.HandleMethodNotAllowed = true
	router.NoMethod(handler.NoMethod)
	router.NoRoute(handler.NoRoute)

	if cfg.Metrics.Enabled && hdl.Metrics != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(hdl.Metrics))
	}

	basePath := router.Group(cfg.BasePath)

	healthPath := basePath.Group("/health")
	RegisterHealth(healthPath, hdl.Health)

	limited := basePath.Group("", middleware.RateLimit(log, rdb, cfg.Redis.RateLimit.Requests, cfg.Redis.RateLimit.Window))

	topicPath := limited.Group("/topics")
	RegisterTopicRoutes(topicPath, hdl.Topic)

	subscriberPath := limited.Group("/subscribers")
	RegisterSubscriberRoutes(subscriberPath, hdl.Subscriber)

	contentPath := limited.Group("/content")
	RegisterContentRoutes(contentPath, hdl.Content)

	return router
}
