package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
	"github.com/pageza/recipeshare/backend/internal/types"
)

func setupRecipeTest(t *testing.T) (*gorm.DB, *service.RecipeService) {
	db := testhelpers.SetupTestDatabase(t)
	images := service.NewImageService(testhelpers.NewMemoryImageStore(), zerolog.Nop())
	return db, service.NewRecipeService(db, images, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreateRecipeDefaults(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)

	recipe, err := svc.Create(context.Background(), owner.ID, types.RecipeInput{
		Title:        strPtr("  Pancakes  "),
		Ingredients:  []string{"flour", " ", "milk"},
		Instructions: []string{"mix", ""},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Pancakes", recipe.Title)
	assert.Equal(t, models.DifficultyEasy, recipe.Difficulty)
	assert.Equal(t, service.DefaultImageURL, recipe.ImageURL)
	assert.Empty(t, recipe.ThumbURL)
	assert.Equal(t, models.StringArray{"flour", "milk"}, recipe.Ingredients)
	assert.Equal(t, models.StringArray{"mix"}, recipe.Instructions)
	assert.Zero(t, recipe.AvgRating)
	require.NotNil(t, recipe.OwnerID)
	assert.Equal(t, owner.ID, *recipe.OwnerID)
	require.NotNil(t, recipe.Embedding)
	assert.Len(t, recipe.Embedding.Slice(), models.EmbeddingDimensions)

	loaded, err := svc.Get(context.Background(), recipe.ID)
	require.NoError(t, err)
	view := service.ToView(loaded, nil)
	assert.Equal(t, 0, view.FavoritesCount)
	assert.False(t, view.IsFavorite)
	assert.Equal(t, 0, view.UserRating)
}

func TestCreateRecipeValidation(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)

	tests := []struct {
		name string
		in   types.RecipeInput
	}{
		{"missing title", types.RecipeInput{}},
		{"blank title", types.RecipeInput{Title: strPtr("   ")}},
		{"short title", types.RecipeInput{Title: strPtr("A")}},
		{"bad category", types.RecipeInput{Title: strPtr("Soup"), Category: strPtr("brunch")}},
		{"bad difficulty", types.RecipeInput{Title: strPtr("Soup"), Difficulty: strPtr("extreme")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), owner.ID, tt.in, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	_, svc := setupRecipeTest(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateRecipe(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)
	other := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, &owner.ID, testhelpers.WithCategory(models.CategoryLunch))
	ctx := context.Background()

	t.Run("non-owner is forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, recipe.ID, other.ID, types.RecipeInput{Title: strPtr("Hijacked")}, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := svc.Update(ctx, uuid.New(), owner.ID, types.RecipeInput{Title: strPtr("Nope")}, nil)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("empty lists keep stored values", func(t *testing.T) {
		updated, err := svc.Update(ctx, recipe.ID, owner.ID, types.RecipeInput{
			Title:       strPtr("Better Recipe"),
			Ingredients: []string{},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Better Recipe", updated.Title)
		assert.Equal(t, models.StringArray{"ingredient1", "ingredient2"}, updated.Ingredients)
		assert.Equal(t, models.CategoryLunch, updated.Category)
	})

	t.Run("category can be cleared", func(t *testing.T) {
		updated, err := svc.Update(ctx, recipe.ID, owner.ID, types.RecipeInput{Category: strPtr("")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "", updated.Category)
	})

	t.Run("average survives update", func(t *testing.T) {
		require.NoError(t, svc.Rate(ctx, recipe.ID, other.ID, 4))
		updated, err := svc.Update(ctx, recipe.ID, owner.ID, types.RecipeInput{
			Instructions: []string{"new step"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 4.0, updated.AvgRating)
		assert.Equal(t, models.StringArray{"new step"}, updated.Instructions)
	})
}

func TestDeleteRecipe(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)
	other := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, &owner.ID)
	ctx := context.Background()

	require.NoError(t, svc.Rate(ctx, recipe.ID, other.ID, 5))
	require.NoError(t, svc.AddFavorite(ctx, recipe.ID, other.ID))
	require.NoError(t, db.Create(&models.Comment{RecipeID: recipe.ID, UserID: other.ID, Text: "yum"}).Error)

	assert.ErrorIs(t, svc.Delete(ctx, recipe.ID, other.ID), apperrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, recipe.ID, owner.ID))

	_, err := svc.Get(ctx, recipe.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var n int64
	db.Model(&models.RecipeRating{}).Where("recipe_id = ?", recipe.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.RecipeFavorite{}).Where("recipe_id = ?", recipe.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Comment{}).Where("recipe_id = ?", recipe.ID).Count(&n)
	assert.Zero(t, n)
}

func TestRateRecipe(t *testing.T) {
	db, svc := setupRecipeTest(t)
	alice := testhelpers.CreateTestUser(t, db)
	bob := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.Rate(ctx, recipe.ID, alice.ID, 4))
	require.NoError(t, svc.Rate(ctx, recipe.ID, bob.ID, 5))

	loaded, err := svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, loaded.AvgRating)

	// Re-rating overwrites the previous value.
	require.NoError(t, svc.Rate(ctx, recipe.ID, alice.ID, 2))
	loaded, err = svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, loaded.AvgRating)
	assert.Len(t, loaded.Ratings, 2)
	assert.Equal(t, 2, service.ToView(loaded, &alice.ID).UserRating)

	for _, bad := range []int{0, 6, -1} {
		err := svc.Rate(ctx, recipe.ID, alice.ID, bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "value %d", bad)
	}
	loaded, err = svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, loaded.AvgRating)

	assert.ErrorIs(t, svc.Rate(ctx, uuid.New(), alice.ID, 3), apperrors.ErrNotFound)
}

func TestRateRecipeConcurrent(t *testing.T) {
	db, svc := setupRecipeTest(t)
	recipe := testhelpers.CreateTestRecipe(t, db, nil)

	users := make([]*models.User, 5)
	for i := range users {
		users[i] = testhelpers.CreateTestUser(t, db)
	}

	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(id uuid.UUID, value int) {
			defer wg.Done()
			assert.NoError(t, svc.Rate(context.Background(), recipe.ID, id, value))
		}(u.ID, i+1)
	}
	wg.Wait()

	loaded, err := svc.Get(context.Background(), recipe.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Ratings, 5)
	assert.Equal(t, 3.0, loaded.AvgRating)
}

func TestFavorites(t *testing.T) {
	db, svc := setupRecipeTest(t)
	user := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, nil)
	ctx := context.Background()

	require.NoError(t, svc.AddFavorite(ctx, recipe.ID, user.ID))
	require.NoError(t, svc.AddFavorite(ctx, recipe.ID, user.ID))

	loaded, err := svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	view := service.ToView(loaded, &user.ID)
	assert.Equal(t, 1, view.FavoritesCount)
	assert.True(t, view.IsFavorite)

	favs, err := svc.ListFavorites(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, recipe.ID, favs[0].ID)

	require.NoError(t, svc.RemoveFavorite(ctx, recipe.ID, user.ID))
	require.NoError(t, svc.RemoveFavorite(ctx, recipe.ID, user.ID))

	loaded, err = svc.Get(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, service.ToView(loaded, &user.ID).FavoritesCount)

	assert.ErrorIs(t, svc.AddFavorite(ctx, uuid.New(), user.ID), apperrors.ErrNotFound)
}

func TestListRecipes(t *testing.T) {
	db, svc := setupRecipeTest(t)
	fan := testhelpers.CreateTestUser(t, db)
	base := time.Now().Add(-time.Hour)

	oldest := testhelpers.CreateTestRecipe(t, db, nil,
		testhelpers.WithTitle("Tomato Soup"),
		testhelpers.WithIngredients("tomato", "salt"),
		testhelpers.WithCategory(models.CategoryLunch),
		testhelpers.WithAvgRating(5),
		testhelpers.WithCreatedAt(base))
	middle := testhelpers.CreateTestRecipe(t, db, nil,
		testhelpers.WithTitle("Omelette"),
		testhelpers.WithIngredients("Eggs", "butter"),
		testhelpers.WithCategory(models.CategoryBreakfast),
		testhelpers.WithAvgRating(3),
		testhelpers.WithCreatedAt(base.Add(time.Minute)))
	newest := testhelpers.CreateTestRecipe(t, db, nil,
		testhelpers.WithTitle("100% Pasta_Bake"),
		testhelpers.WithIngredients("pasta", "cheese"),
		testhelpers.WithCategory(models.CategoryDinner),
		testhelpers.WithAvgRating(3),
		testhelpers.WithCreatedAt(base.Add(2*time.Minute)))
	require.NoError(t, svc.AddFavorite(context.Background(), middle.ID, fan.ID))

	ids := func(recipes []models.Recipe) []uuid.UUID {
		out := make([]uuid.UUID, len(recipes))
		for i, r := range recipes {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name  string
		query types.ListQuery
		want  []uuid.UUID
	}{
		{"newest first", types.ListQuery{}, []uuid.UUID{newest.ID, middle.ID, oldest.ID}},
		{"title match ignores case", types.ListQuery{Q: "SOUP"}, []uuid.UUID{oldest.ID}},
		{"ingredient match ignores case", types.ListQuery{Q: "egg"}, []uuid.UUID{middle.ID}},
		{"like wildcards are literal", types.ListQuery{Q: "100%"}, []uuid.UUID{newest.ID}},
		{"no match", types.ListQuery{Q: "chocolate"}, []uuid.UUID{}},
		{"category", types.ListQuery{Category: models.CategoryBreakfast}, []uuid.UUID{middle.ID}},
		{"rating breaks ties by recency", types.ListQuery{Sort: types.SortRating}, []uuid.UUID{oldest.ID, newest.ID, middle.ID}},
		{"popular", types.ListQuery{Sort: types.SortPopular}, []uuid.UUID{middle.ID, newest.ID, oldest.ID}},
		{"limit", types.ListQuery{Limit: 2}, []uuid.UUID{newest.ID, middle.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestListOwned(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)
	mine := testhelpers.CreateTestRecipe(t, db, &owner.ID)
	testhelpers.CreateTestRecipe(t, db, nil)

	recipes, err := svc.ListOwned(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, mine.ID, recipes[0].ID)
}

func TestSimilarRecipes(t *testing.T) {
	db, svc := setupRecipeTest(t)
	owner := testhelpers.CreateTestUser(t, db)
	ctx := context.Background()

	create := func(title string, ingredients ...string) *models.Recipe {
		r, err := svc.Create(ctx, owner.ID, types.RecipeInput{
			Title:       strPtr(title),
			Ingredients: ingredients,
		}, nil)
		require.NoError(t, err)
		return r
	}
	target := create("Tomato Basil Pasta", "tomato", "basil", "pasta")
	near := create("Tomato Pasta", "tomato", "pasta", "garlic")
	create("Chocolate Cake", "chocolate", "flour", "sugar")

	similar, err := svc.Similar(ctx, target.ID, 1)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, near.ID, similar[0].ID)

	_, err = svc.Similar(ctx, uuid.New(), 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateRecipeWithImage(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	store := testhelpers.NewMemoryImageStore()
	svc := service.NewRecipeService(db, service.NewImageService(store, zerolog.Nop()), zerolog.Nop())
	owner := testhelpers.CreateTestUser(t, db)

	recipe, err := svc.Create(context.Background(), owner.ID, types.RecipeInput{Title: strPtr("Photo Recipe")}, &service.ImageUpload{
		Filename:    "dish.png",
		ContentType: "image/png",
		Data:        testPNG(t, 960, 640),
	})
	require.NoError(t, err)
	assert.NotEqual(t, service.DefaultImageURL, recipe.ImageURL)
	assert.NotEqual(t, recipe.ImageURL, recipe.ThumbURL)
	assert.NotEmpty(t, recipe.ImageBlurHash)
	assert.Len(t, store.Objects, 2)
}
