package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/router"
	"github.com/pageza/recipeshare/backend/internal/service"
)

// Dependencies are the external resources the API runs on. Images and
// Mailer are built from the configuration when nil; Redis is optional.
type Dependencies struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Images service.ImageStore
	Mailer service.Mailer
}

// NewHandler assembles services, handlers and middleware into the root handler
func NewHandler(ctx context.Context, cfg *config.Config, deps Dependencies, logger zerolog.Logger) (http.Handler, error) {
	if deps.Images == nil {
		store, err := service.NewImageStore(ctx, cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to set up image storage: %w", err)
		}
		deps.Images = store
	}
	if deps.Mailer == nil {
		deps.Mailer = service.NewEmailService(cfg.SMTP, cfg.Server.ClientURL, logger.With().Str("component", "email").Logger())
	}

	authService := service.NewAuthService(deps.DB, cfg.Auth, deps.Mailer, logger.With().Str("component", "auth").Logger())
	images := service.NewImageService(deps.Images, logger.With().Str("component", "images").Logger())
	recipeService := service.NewRecipeService(deps.DB, images, logger.With().Str("component", "recipes").Logger())
	recommendations := service.NewRecommendationService(deps.DB, logger.With().Str("component", "recommendations").Logger())
	comments := service.NewCommentService(deps.DB, logger.With().Str("component", "comments").Logger())
	users := service.NewUserService(deps.DB, logger.With().Str("component", "users").Logger())

	auth := api.NewAuth(authService, deps.DB)
	handlers := api.Handlers{
		Health:   api.NewHealthHandler(deps.DB),
		Auth:     api.NewAuthHandler(authService),
		Recipes:  api.NewRecipeHandler(recipeService, recommendations, auth, cfg.Server.MaxUploadBytes),
		Comments: api.NewCommentHandler(comments, auth),
		Users:    api.NewUserHandler(users, recipeService, auth),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
			Window: cfg.RateLimit.Window,
			Limit:  cfg.RateLimit.Requests,
		}, logger.With().Str("component", "rate_limit").Logger())
	}

	return router.SetupRouter(cfg, handlers, limiter, logger), nil
}
