package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrRecipeNotFound  = apperrors.NotFound("Not found")
	ErrCommentNotFound = apperrors.NotFound("Comment not found")
	ErrUserNotFound    = apperrors.NotFound("User not found")
	ErrForbidden       = apperrors.Forbidden("Forbidden")
	ErrInvalidRating   = apperrors.Validation("Rating must be 1-5")
)

// notFound maps gorm's missing-row error to domain, leaving other errors untouched
func notFound(err error, domain *apperrors.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain
	}
	return err
}

// isUniqueViolation reports whether err is a unique constraint failure on
// postgres or sqlite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
