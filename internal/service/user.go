package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

// UserService handles the signed-in user's own account
type UserService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// Ensure UserService implements IUserService
var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, logger zerolog.Logger) *UserService {
	return &UserService{
		db:     db,
		logger: logger,
	}
}

// GetProfile retrieves a user by id
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

// UpdateProfile changes the user's name and email. The email must not belong
// to another account.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req types.UpdateProfileRequest) (*models.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = NormalizeEmail(req.Email)
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if req.Email != user.Email {
		var count int64
		if err := db.Model(&models.User{}).
			Where("email = ? AND id <> ?", req.Email, userID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return nil, ErrEmailInUse
		}
	}

	if err := db.Model(user).Updates(map[string]interface{}{
		"name":  req.Name,
		"email": req.Email,
	}).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	user.Name = req.Name
	user.Email = req.Email

	return user, nil
}

// DeleteAccount removes the user and everything tied to them: owned recipes
// with their ratings, favorites and comments, plus the user's own comments,
// favorites and ratings on other recipes. Averages of other recipes are left
// as stored.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.GetProfile(ctx, userID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := func() *gorm.DB {
			return tx.Model(&models.Recipe{}).Select("id").Where("owner_id = ?", userID)
		}

		if err := tx.Where("recipe_id IN (?)", owned()).Delete(&models.RecipeRating{}).Error; err != nil {
			return fmt.Errorf("delete ratings on owned recipes: %w", err)
		}
		if err := tx.Where("recipe_id IN (?)", owned()).Delete(&models.RecipeFavorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites on owned recipes: %w", err)
		}
		if err := tx.Where("recipe_id IN (?)", owned()).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments on owned recipes: %w", err)
		}
		if err := tx.Where("owner_id = ?", userID).Delete(&models.Recipe{}).Error; err != nil {
			return fmt.Errorf("delete owned recipes: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RecipeFavorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.RecipeRating{}).Error; err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.AccountsDeleted.Inc()
	s.logger.Info().Str("user_id", userID.String()).Msg("account deleted")
	return nil
}
