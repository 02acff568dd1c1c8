package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/middleware"
)

// SetupRouter configures the middleware stack and the application routes.
// limiter may be nil to disable rate limiting.
func SetupRouter(cfg *config.Config, handlers api.Handlers, limiter *middleware.RateLimiter, logger zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
	)

	// Scrapes are not rate limited.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if limiter != nil {
		router.Use(limiter.RateLimitMiddleware())
	}
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	if cfg.Storage.Backend == config.StorageLocal {
		router.Static(cfg.Storage.PublicPath, cfg.Storage.UploadDir)
	}

	handlers.RegisterRoutes(router.Group("/api"))

	router.NoRoute(middleware.NotFound())

	return router
}
