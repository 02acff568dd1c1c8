package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req types.RegisterRequest) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, password string) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in types.RecipeInput, img *ImageUpload) (*models.Recipe, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	Update(ctx context.Context, id, userID uuid.UUID, in types.RecipeInput, img *ImageUpload) (*models.Recipe, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, q types.ListQuery) ([]models.Recipe, error)
	ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
	Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error)
	Rate(ctx context.Context, recipeID, userID uuid.UUID, value int) error
	AddFavorite(ctx context.Context, recipeID, userID uuid.UUID) error
	RemoveFavorite(ctx context.Context, recipeID, userID uuid.UUID) error
}

// IRecommendationService suggests recipes based on a user's activity
type IRecommendationService interface {
	For(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error)
}

// ICommentService defines the interface for comment operations
type ICommentService interface {
	ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, recipeID, userID uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, commentID, userID uuid.UUID) error
}

// IUserService defines the interface for account operations
type IUserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// Mailer sends the account emails
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
	SendPasswordResetEmail(ctx context.Context, to, token string) error
}

// ImageStore persists uploaded image bytes and returns their public URL
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageProcessor turns an upload into stored image references
type ImageProcessor interface {
	Process(ctx context.Context, upload ImageUpload) (*ProcessedImage, error)
}
