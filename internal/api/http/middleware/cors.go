package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"newsletter-back/internal/config"
)

var (
	defaultAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultAllowHeaders = []string{"Origin", "Content-Type", "Accept"}
)

func CORS(cfg config.CORS) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	corsConfig := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = defaultAllowMethods
	}

	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = defaultAllowHeaders
	}

	if cfg.AllowAllOrigins {
		corsConfig.AllowOriginFunc = func(string) bool {
			return true
		}
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}

	return cors.New(corsConfig)
}
