package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/models"
)

// RecommendationLimit is the maximum number of recommended recipes.
const RecommendationLimit = 6

// CategorySet returns the distinct non-empty categories of the given
// recipes, in order of first appearance.
func CategorySet(owned, favorited []models.Recipe) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, list := range [][]models.Recipe{owned, favorited} {
		for _, r := range list {
			if r.Category == "" {
				continue
			}
			if _, ok := seen[r.Category]; ok {
				continue
			}
			seen[r.Category] = struct{}{}
			categories = append(categories, r.Category)
		}
	}
	return categories
}

// RankRecommendations keeps candidates not owned by userID whose category is
// in categories, orders them by average rating then recency (both
// descending) and returns at most limit of them.
func RankRecommendations(candidates []models.Recipe, userID uuid.UUID, categories []string, limit int) []models.Recipe {
	if len(categories) == 0 {
		return []models.Recipe{}
	}
	wanted := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		wanted[c] = struct{}{}
	}

	out := make([]models.Recipe, 0, len(candidates))
	for _, r := range candidates {
		if r.IsOwnedBy(userID) {
			continue
		}
		if _, ok := wanted[r.Category]; !ok {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgRating != out[j].AvgRating {
			return out[i].AvgRating > out[j].AvgRating
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RecommendationService suggests recipes from categories the user already
// cooks or favorites
type RecommendationService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewRecommendationService creates a new RecommendationService instance
func NewRecommendationService(db *gorm.DB, logger zerolog.Logger) *RecommendationService {
	return &RecommendationService{db: db, logger: logger}
}

// For returns up to RecommendationLimit recipes for userID. A user with no
// categorized activity gets an empty list.
func (s *RecommendationService) For(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)

	var owned []models.Recipe
	if err := db.Select("id", "category").Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("load owned recipes: %w", err)
	}

	var favorited []models.Recipe
	if err := db.Select("recipes.id", "recipes.category").
		Joins("JOIN recipe_favorites ON recipe_favorites.recipe_id = recipes.id").
		Where("recipe_favorites.user_id = ?", userID).
		Find(&favorited).Error; err != nil {
		return nil, fmt.Errorf("load favorited recipes: %w", err)
	}

	categories := CategorySet(owned, favorited)
	if len(categories) == 0 {
		return []models.Recipe{}, nil
	}

	var candidates []models.Recipe
	if err := withRelations(db).
		Where("(owner_id IS NULL OR owner_id <> ?)", userID).
		Where("category IN ?", categories).
		Order("avg_rating DESC").
		Order("created_at DESC").
		Limit(RecommendationLimit).
		Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Strs("categories", categories).
		Int("candidates", len(candidates)).
		Msg("recommendations computed")

	return RankRecommendations(candidates, userID, categories, RecommendationLimit), nil
}
