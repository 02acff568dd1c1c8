package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// TestJWTSecret signs tokens produced by TokenFor
const TestJWTSecret = "test-secret"

// TestPassword is the plain-text password of users from CreateTestUser
const TestPassword = "testpassword123"

// CreateTestUser creates a verified user with a unique email and TestPassword
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	id := uuid.New()
	user := &models.User{
		ID:              id,
		Name:            "Test User",
		Email:           fmt.Sprintf("testuser+%s@example.com", id.String()[:8]),
		PasswordHash:    string(hash),
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// RecipeOption customizes a recipe created by CreateTestRecipe
type RecipeOption func(*models.Recipe)

func WithCategory(category string) RecipeOption {
	return func(r *models.Recipe) { r.Category = category }
}

func WithTitle(title string) RecipeOption {
	return func(r *models.Recipe) { r.Title = title }
}

func WithIngredients(items ...string) RecipeOption {
	return func(r *models.Recipe) { r.Ingredients = items }
}

func WithAvgRating(avg float64) RecipeOption {
	return func(r *models.Recipe) { r.AvgRating = avg }
}

func WithCreatedAt(ts time.Time) RecipeOption {
	return func(r *models.Recipe) { r.CreatedAt = ts }
}

// CreateTestRecipe creates a recipe owned by ownerID, or unowned when ownerID is nil
func CreateTestRecipe(t *testing.T, db *gorm.DB, ownerID *uuid.UUID, opts ...RecipeOption) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		Title:        "Test Recipe",
		Ingredients:  models.StringArray{"ingredient1", "ingredient2"},
		Instructions: models.StringArray{"step1", "step2"},
		OwnerID:      ownerID,
	}
	for _, opt := range opts {
		opt(recipe)
	}
	require.NoError(t, db.Omit("Ratings", "Favorites").Create(recipe).Error)
	return recipe
}

// TokenFor signs a session token for user with TestJWTSecret
func TokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	claims := types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	require.NoError(t, err)
	return token
}
