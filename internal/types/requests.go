package types

import (
	"github.com/pageza/recipeshare/backend/internal/models"
)

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmResetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateProfileRequest represents the body of PUT /users/me
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// RatingRequest carries a 1..5 rating. Range is checked by the service.
type RatingRequest struct {
	Value int `json:"value"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

// RecipeInput is the normalized body of a recipe create or update, whether
// it arrived as JSON or multipart form data. Nil fields were not provided.
type RecipeInput struct {
	Title           *string                 `json:"title" validate:"omitempty,min=2,max=200"`
	Category        *string                 `json:"category" validate:"omitempty,oneof=breakfast lunch dinner"`
	CookingTime     *int                    `json:"cookingTime" validate:"omitempty,gte=0"`
	Difficulty      *string                 `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Ingredients     []string                `json:"ingredients"`
	Instructions    []string                `json:"instructions"`
	NutritionalInfo *models.NutritionalInfo `json:"nutritionalInfo"`
}

// Sort orders accepted by ListQuery
const (
	SortNewest  = ""
	SortRating  = "rating"
	SortPopular = "popular"
)

// ListQuery filters and orders the recipe listing
type ListQuery struct {
	Q        string
	Category string
	Sort     string
	// Limit caps the result size; zero means no cap.
	Limit int
}
