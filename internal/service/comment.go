package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/models"
)

// MaxCommentLength is the longest accepted comment, in characters
const MaxCommentLength = 2000

var ErrCommentRequired = apperrors.Validation("Comment text required")

// CommentService handles recipe comments
type CommentService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewCommentService(db *gorm.DB, logger zerolog.Logger) *CommentService {
	return &CommentService{db: db, logger: logger}
}

// ListForRecipe returns the recipe's comments, newest first, with authors loaded
func (s *CommentService) ListForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("recipe_id = ?", recipeID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create adds a comment by userID to an existing recipe
func (s *CommentService) Create(ctx context.Context, recipeID, userID uuid.UUID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentRequired
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return nil, apperrors.Validationf("Comment must be at most %d characters", MaxCommentLength)
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup recipe: %w", err)
	}
	if count == 0 {
		return nil, ErrRecipeNotFound
	}

	comment := &models.Comment{RecipeID: recipeID, UserID: userID, Text: text}
	if err := db.Omit("User").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := db.Preload("User").First(comment, "id = ?", comment.ID).Error; err != nil {
		return nil, fmt.Errorf("reload comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment written by userID
func (s *CommentService) Delete(ctx context.Context, commentID, userID uuid.UUID) error {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error; err != nil {
		return notFound(err, ErrCommentNotFound)
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
