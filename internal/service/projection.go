package service

import (
	"github.com/google/uuid"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
)

// RatingMap returns the recipe's ratings keyed by user. Ratings must be preloaded.
func RatingMap(r *models.Recipe) map[uuid.UUID]int {
	m := make(map[uuid.UUID]int, len(r.Ratings))
	for _, rating := range r.Ratings {
		m[rating.UserID] = rating.Value
	}
	return m
}

// FavoriteSet returns the users who favorited the recipe. Favorites must be preloaded.
func FavoriteSet(r *models.Recipe) map[uuid.UUID]struct{} {
	s := make(map[uuid.UUID]struct{}, len(r.Favorites))
	for _, fav := range r.Favorites {
		s[fav.UserID] = struct{}{}
	}
	return s
}

// AverageRating is the arithmetic mean of the valid (1..5) values, or 0.
func AverageRating(ratings map[uuid.UUID]int) float64 {
	var sum, n int
	for _, v := range ratings {
		if v < MinRating || v > MaxRating {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// ToView projects a recipe for viewer, which may be nil for anonymous requests.
// The stored average is reported as-is.
func ToView(r *models.Recipe, viewer *uuid.UUID) types.RecipeView {
	view := types.RecipeView{
		ID:              r.ID,
		Title:           r.Title,
		ImageURL:        r.ImageURL,
		ThumbURL:        r.ThumbURL,
		ImageBlurHash:   r.ImageBlurHash,
		Ingredients:     nonNil(r.Ingredients),
		Instructions:    nonNil(r.Instructions),
		Category:        r.Category,
		CookingTime:     r.CookingTime,
		Difficulty:      r.Difficulty,
		NutritionalInfo: r.Nutrition,
		AvgRating:       r.AvgRating,
		FavoritesCount:  len(r.Favorites),
		OwnerID:         r.OwnerID,
		CreatedAt:       r.CreatedAt,
	}

	if viewer != nil {
		_, view.IsFavorite = FavoriteSet(r)[*viewer]
		view.UserRating = RatingMap(r)[*viewer]
	}

	return view
}

// ToViews projects a list of recipes for viewer.
func ToViews(recipes []models.Recipe, viewer *uuid.UUID) []types.RecipeView {
	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		views[i] = ToView(&recipes[i], viewer)
	}
	return views
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
