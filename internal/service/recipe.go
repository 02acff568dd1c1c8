package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/types"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

// DefaultImageURL is used for recipes created without an image
const DefaultImageURL = "https://picsum.photos/800/600"

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images ImageProcessor
	logger zerolog.Logger
}

// NewRecipeService creates a new RecipeService instance. images may be nil,
// in which case uploads are rejected.
func NewRecipeService(db *gorm.DB, images ImageProcessor, logger zerolog.Logger) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
		logger: logger,
	}
}

// withRelations preloads the rating map and favorite set
func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Ratings").Preload("Favorites")
}

// Create validates the input and stores a new recipe owned by ownerID
func (s *RecipeService) Create(ctx context.Context, ownerID uuid.UUID, in types.RecipeInput, img *ImageUpload) (*models.Recipe, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.Validation("title is required")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:        strings.TrimSpace(*in.Title),
		CookingTime:  in.CookingTime,
		Difficulty:   models.DifficultyEasy,
		Ingredients:  cleanList(in.Ingredients),
		Instructions: cleanList(in.Instructions),
		ImageURL:     DefaultImageURL,
		OwnerID:      &ownerID,
	}
	if in.Category != nil {
		recipe.Category = *in.Category
	}
	if in.Difficulty != nil && *in.Difficulty != "" {
		recipe.Difficulty = *in.Difficulty
	}
	if in.NutritionalInfo != nil {
		recipe.Nutrition = *in.NutritionalInfo
	}

	if img != nil {
		processed, err := s.processImage(ctx, *img)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = processed.URL
		recipe.ThumbURL = processed.ThumbURL
		recipe.ImageBlurHash = processed.BlurHash
	}

	embedding := EmbedRecipe(recipe)
	recipe.Embedding = &embedding

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	s.logger.Info().
		Str("recipe_id", recipe.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("recipe created")

	return recipe, nil
}

// Get loads a recipe with its ratings and favorites
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := withRelations(s.db.WithContext(ctx)).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrRecipeNotFound)
	}
	return &recipe, nil
}

// Update applies the provided fields to a recipe owned by userID. Empty
// ingredient or instruction lists leave the stored lists unchanged.
func (s *RecipeService) Update(ctx context.Context, id, userID uuid.UUID, in types.RecipeInput, img *ImageUpload) (*models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !recipe.IsOwnedBy(userID) {
		return nil, ErrForbidden
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.Validation("title is not allowed to be empty")
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		recipe.Title = strings.TrimSpace(*in.Title)
		updates["title"] = recipe.Title
	}
	if in.Category != nil {
		recipe.Category = *in.Category
		updates["category"] = recipe.Category
	}
	if in.CookingTime != nil {
		recipe.CookingTime = in.CookingTime
		updates["cooking_time"] = *in.CookingTime
	}
	if in.Difficulty != nil && *in.Difficulty != "" {
		recipe.Difficulty = *in.Difficulty
		updates["difficulty"] = recipe.Difficulty
	}
	if list := cleanList(in.Ingredients); len(list) > 0 {
		recipe.Ingredients = list
		updates["ingredients"] = recipe.Ingredients
	}
	if list := cleanList(in.Instructions); len(list) > 0 {
		recipe.Instructions = list
		updates["instructions"] = recipe.Instructions
	}
	if in.NutritionalInfo != nil {
		recipe.Nutrition = *in.NutritionalInfo
		updates["nutrition_calories"] = recipe.Nutrition.Calories
		updates["nutrition_protein"] = recipe.Nutrition.Protein
		updates["nutrition_fat"] = recipe.Nutrition.Fat
		updates["nutrition_carbs"] = recipe.Nutrition.Carbs
	}
	if img != nil {
		processed, err := s.processImage(ctx, *img)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = processed.URL
		recipe.ThumbURL = processed.ThumbURL
		recipe.ImageBlurHash = processed.BlurHash
		updates["image_url"] = recipe.ImageURL
		updates["thumb_url"] = recipe.ThumbURL
		updates["image_blur_hash"] = recipe.ImageBlurHash
	}

	if len(updates) == 0 {
		return recipe, nil
	}

	embedding := EmbedRecipe(recipe)
	recipe.Embedding = &embedding
	updates["embedding"] = recipe.Embedding

	// Only touched columns are written so a concurrent rating's average survives.
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a recipe owned by userID together with its ratings,
// favorites and comments
func (s *RecipeService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !recipe.IsOwnedBy(userID) {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeRating{}).Error; err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeFavorite{}).Error; err != nil {
			return fmt.Errorf("delete favorites: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return nil
	})
}

// List returns recipes matching q. The text filter is a case-insensitive
// substring match on the title or any ingredient.
func (s *RecipeService) List(ctx context.Context, q types.ListQuery) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)
	query := withRelations(db)

	if text := strings.TrimSpace(q.Q); text != "" {
		like := "%" + escapeLike(strings.ToLower(text)) + "%"
		query = query.Where(
			"(LOWER(title) LIKE ? ESCAPE '\\' OR "+ingredientMatchSQL(db)+")",
			like, like,
		)
	}

	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}

	switch q.Sort {
	case types.SortRating:
		query = query.Order("avg_rating DESC")
	case types.SortPopular:
		query = query.Order("(SELECT COUNT(*) FROM recipe_favorites WHERE recipe_favorites.recipe_id = recipes.id) DESC")
	}
	query = query.Order("created_at DESC")

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// ingredientMatchSQL returns a predicate matching any ingredient element
// against a lower-cased LIKE pattern
func ingredientMatchSQL(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "EXISTS (SELECT 1 FROM jsonb_array_elements_text(recipes.ingredients) AS ing(value) WHERE LOWER(ing.value) LIKE ? ESCAPE '\\')"
	}
	return "EXISTS (SELECT 1 FROM json_each(recipes.ingredients) WHERE LOWER(json_each.value) LIKE ? ESCAPE '\\')"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListOwned returns the recipes owned by userID, newest first
func (s *RecipeService) ListOwned(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := withRelations(s.db.WithContext(ctx)).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list owned recipes: %w", err)
	}
	return recipes, nil
}

// ListFavorites returns the recipes userID has favorited, most recent favorite first
func (s *RecipeService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := withRelations(s.db.WithContext(ctx)).
		Joins("JOIN recipe_favorites ON recipe_favorites.recipe_id = recipes.id").
		Where("recipe_favorites.user_id = ?", userID).
		Order("recipe_favorites.created_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list favorite recipes: %w", err)
	}
	return recipes, nil
}

// Similar returns up to limit recipes closest to id by embedding distance.
// Postgres orders with pgvector; other dialects rank in memory.
func (s *RecipeService) Similar(ctx context.Context, id uuid.UUID, limit int) ([]models.Recipe, error) {
	recipe, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.Embedding == nil {
		return []models.Recipe{}, nil
	}

	db := s.db.WithContext(ctx)
	query := withRelations(db).Where("id <> ?", id).Where("embedding IS NOT NULL")

	var recipes []models.Recipe
	if db.Dialector.Name() == "postgres" {
		err = query.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{*recipe.Embedding}},
		}).Limit(limit).Find(&recipes).Error
		if err != nil {
			return nil, fmt.Errorf("similar recipes: %w", err)
		}
		return recipes, nil
	}

	if err := query.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("similar recipes: %w", err)
	}
	target := recipe.Embedding.Slice()
	sort.SliceStable(recipes, func(i, j int) bool {
		return embeddingDistance(target, recipes[i].Embedding.Slice()) <
			embeddingDistance(target, recipes[j].Embedding.Slice())
	})
	if limit > 0 && len(recipes) > limit {
		recipes = recipes[:limit]
	}
	return recipes, nil
}

// Rate sets userID's rating of a recipe and recomputes its average
func (s *RecipeService) Rate(ctx context.Context, recipeID, userID uuid.UUID, value int) error {
	if value < MinRating || value > MaxRating {
		return ErrInvalidRating
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the recipe so concurrent raters recompute the average in turn.
		var recipe models.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
			return notFound(err, ErrRecipeNotFound)
		}

		rating := models.RecipeRating{RecipeID: recipeID, UserID: userID, Value: value}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipe_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rating).Error; err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		var rows []models.RecipeRating
		if err := tx.Where("recipe_id = ?", recipeID).Find(&rows).Error; err != nil {
			return fmt.Errorf("load ratings: %w", err)
		}
		avg := AverageRating(RatingMap(&models.Recipe{Ratings: rows}))

		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).
			UpdateColumn("avg_rating", avg).Error; err != nil {
			return fmt.Errorf("update average: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecipeRatings.Inc()
	return nil
}

// AddFavorite adds userID to the recipe's favorite set. Repeating it is a no-op.
func (s *RecipeService) AddFavorite(ctx context.Context, recipeID, userID uuid.UUID) error {
	if err := s.ensureExists(ctx, recipeID); err != nil {
		return err
	}
	fav := models.RecipeFavorite{RecipeID: recipeID, UserID: userID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&fav).Error; err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	metrics.RecipeFavorites.WithLabelValues("add").Inc()
	return nil
}

// RemoveFavorite removes userID from the recipe's favorite set. Removing an
// absent member is a no-op.
func (s *RecipeService) RemoveFavorite(ctx context.Context, recipeID, userID uuid.UUID) error {
	if err := s.ensureExists(ctx, recipeID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).
		Where("recipe_id = ? AND user_id = ?", recipeID, userID).
		Delete(&models.RecipeFavorite{}).Error; err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	metrics.RecipeFavorites.WithLabelValues("remove").Inc()
	return nil
}

func (s *RecipeService) ensureExists(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup recipe: %w", err)
	}
	if count == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

func (s *RecipeService) processImage(ctx context.Context, img ImageUpload) (*ProcessedImage, error) {
	if s.images == nil {
		return nil, apperrors.Validation("image uploads are not enabled")
	}
	return s.images.Process(ctx, img)
}

// validateInput checks field rules. An empty category or difficulty means
// "none" and "default" respectively, so they skip the enum check.
func validateInput(in types.RecipeInput) error {
	if in.Category != nil && *in.Category == "" {
		in.Category = nil
	}
	if in.Difficulty != nil && *in.Difficulty == "" {
		in.Difficulty = nil
	}
	return validation.Validate(in)
}

// cleanList trims entries and drops empty ones
func cleanList(items []string) models.StringArray {
	out := make(models.StringArray, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
