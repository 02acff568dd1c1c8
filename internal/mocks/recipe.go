package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) Create(ctx context.Context, ownerID uuid.UUID, in types.RecipeInput, img *service.ImageUpload) (*models.Recipe, error) {
	args := m.Called(ctx, ownerID, in, img)
	return recipeResult(args)
}

func (m *MockRecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, id)
	return recipeResult(args)
}

func (m *MockRecipeService) Update(ctx context.Context, id, userID uuid.UUID, in types.RecipeInput, img *service.ImageUpload) (*models.Recipe, error) {
	args := m.Called(ctx, id, userID, in, img)
	return recipeResult(args)
}

func (m *MockRecipeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockRecipeService) List(ctx context.Context, q types.ListQuery) ([]models.Recipe, error) {
	args := m.Called(ctx, q)
	return recipesResult(args)
}

func (m *MockRecipeService) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	args := m.Called(ctx, userID)
	return recipesResult(args)
}

func (m *MockRecipeService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	args := m.Called(ctx, userID)
	return recipesResult(args)
}

func (m *MockRecipeService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error) {
	args := m.Called(ctx, id, limit)
	return recipesResult(args)
}

func (m *MockRecipeService) Rate(ctx context.Context, recipeID, userID uuid.UUID, value int) error {
	return m.Called(ctx, recipeID, userID, value).Error(0)
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, recipeID, userID uuid.UUID) error {
	return m.Called(ctx, recipeID, userID).Error(0)
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, recipeID, userID uuid.UUID) error {
	return m.Called(ctx, recipeID, userID).Error(0)
}

// MockRecommendationService is a mock implementation of service.IRecommendationService
type MockRecommendationService struct {
	mock.Mock
}

var _ service.IRecommendationService = (*MockRecommendationService)(nil)

func (m *MockRecommendationService) For(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	args := m.Called(ctx, userID)
	return recipesResult(args)
}

func recipeResult(args mock.Arguments) (*models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func recipesResult(args mock.Arguments) ([]models.Recipe, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recipe), args.Error(1)
}
