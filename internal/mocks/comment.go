package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// MockCommentService is a mock implementation of service.ICommentService
type MockCommentService struct {
	mock.Mock
}

var _ service.ICommentService = (*MockCommentService)(nil)

func (m *MockCommentService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Comment, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentService) Create(ctx context.Context, recipeID, userID uuid.UUID, text string) (*models.Comment, error) {
	args := m.Called(ctx, recipeID, userID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentService) Delete(ctx context.Context, commentID, userID uuid.UUID) error {
	return m.Called(ctx, commentID, userID).Error(0)
}

// MockUserService is a mock implementation of service.IUserService
type MockUserService struct {
	mock.Mock
}

var _ service.IUserService = (*MockUserService)(nil)

func (m *MockUserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
