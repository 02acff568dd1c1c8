package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// RecipeView is a recipe as seen by a particular (possibly anonymous) viewer
type RecipeView struct {
	ID              uuid.UUID              `json:"id"`
	Title           string                 `json:"title"`
	ImageURL        string                 `json:"imageUrl"`
	ThumbURL        string                 `json:"thumbUrl"`
	ImageBlurHash   string                 `json:"imageBlurHash,omitempty"`
	Ingredients     []string               `json:"ingredients"`
	Instructions    []string               `json:"instructions"`
	Category        string                 `json:"category"`
	CookingTime     *int                   `json:"cookingTime,omitempty"`
	Difficulty      string                 `json:"difficulty,omitempty"`
	NutritionalInfo models.NutritionalInfo `json:"nutritionalInfo"`
	AvgRating       float64                `json:"avgRating"`
	FavoritesCount  int                    `json:"favoritesCount"`
	OwnerID         *uuid.UUID             `json:"ownerId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	IsFavorite      bool                   `json:"isFavorite"`
	UserRating      int                    `json:"userRating"`
}

// UserView is the public shape of a user
type UserView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	IsEmailVerified *bool     `json:"isEmailVerified,omitempty"`
}

// CommentView is a comment with its author populated
type CommentView struct {
	ID        uuid.UUID `json:"id"`
	RecipeID  uuid.UUID `json:"recipeId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	User      UserView  `json:"user"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token   string   `json:"token"`
	User    UserView `json:"user"`
	Message string   `json:"message,omitempty"`
}
