package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/middleware"
)

// Auth holds the middleware handlers attach to protected and public routes
type Auth struct {
	required []gin.HandlerFunc
	optional gin.HandlerFunc
}

// NewAuth builds the auth chains. With a database, protected routes also
// reject tokens of deleted accounts.
func NewAuth(validator middleware.TokenValidator, db *gorm.DB) Auth {
	required := []gin.HandlerFunc{middleware.AuthMiddleware(validator)}
	if db != nil {
		required = append(required, middleware.RequireActiveAccount(db))
	}
	return Auth{
		required: required,
		optional: middleware.OptionalAuth(validator),
	}
}

// Protect returns a sub-group of rg whose routes require a valid token
func (a Auth) Protect(rg *gin.RouterGroup) *gin.RouterGroup {
	return rg.Group("", a.required...)
}

// Identify returns a sub-group of rg whose routes see the caller when a
// valid token is sent
func (a Auth) Identify(rg *gin.RouterGroup) *gin.RouterGroup {
	return rg.Group("", a.optional)
}

// Handlers groups every resource handler mounted under /api
type Handlers struct {
	Health   *HealthHandler
	Auth     *AuthHandler
	Recipes  *RecipeHandler
	Comments *CommentHandler
	Users    *UserHandler
}

// RegisterRoutes mounts every handler on rg
func (h Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	h.Health.RegisterRoutes(rg)
	h.Auth.RegisterRoutes(rg)
	h.Recipes.RegisterRoutes(rg)
	h.Comments.RegisterRoutes(rg)
	h.Users.RegisterRoutes(rg)
}
