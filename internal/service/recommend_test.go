package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func TestCategorySet(t *testing.T) {
	owned := []models.Recipe{{Category: "lunch"}, {Category: ""}, {Category: "dinner"}}
	favorited := []models.Recipe{{Category: "lunch"}, {Category: "breakfast"}}

	assert.Equal(t, []string{"lunch", "dinner", "breakfast"}, service.CategorySet(owned, favorited))
	assert.Empty(t, service.CategorySet(nil, []models.Recipe{{Category: ""}}))
}

func TestRankRecommendations(t *testing.T) {
	me := uuid.New()
	someone := uuid.New()
	now := time.Now()

	mine := models.Recipe{ID: uuid.New(), Category: "lunch", AvgRating: 5, OwnerID: &me}
	best := models.Recipe{ID: uuid.New(), Category: "lunch", AvgRating: 4.5, OwnerID: &someone, CreatedAt: now}
	tieOld := models.Recipe{ID: uuid.New(), Category: "dinner", AvgRating: 4, CreatedAt: now.Add(-time.Hour)}
	tieNew := models.Recipe{ID: uuid.New(), Category: "dinner", AvgRating: 4, CreatedAt: now}
	offTopic := models.Recipe{ID: uuid.New(), Category: "breakfast", AvgRating: 5}

	got := service.RankRecommendations(
		[]models.Recipe{mine, tieOld, offTopic, best, tieNew},
		me, []string{"lunch", "dinner"}, 6,
	)
	require.Len(t, got, 3)
	assert.Equal(t, best.ID, got[0].ID)
	assert.Equal(t, tieNew.ID, got[1].ID)
	assert.Equal(t, tieOld.ID, got[2].ID)

	assert.Len(t, service.RankRecommendations([]models.Recipe{best, tieNew, tieOld}, me, []string{"lunch", "dinner"}, 2), 2)
	assert.Empty(t, service.RankRecommendations([]models.Recipe{best}, me, nil, 6))
}

func TestRecommendationsFor(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	recipes := service.NewRecipeService(db, nil, zerolog.Nop())
	svc := service.NewRecommendationService(db, zerolog.Nop())
	ctx := context.Background()

	me := testhelpers.CreateTestUser(t, db)
	chef := testhelpers.CreateTestUser(t, db)

	// No activity, no recommendations.
	got, err := svc.For(ctx, me.ID)
	require.NoError(t, err)
	assert.Empty(t, got)

	testhelpers.CreateTestRecipe(t, db, &me.ID, testhelpers.WithCategory(models.CategoryLunch))
	liked := testhelpers.CreateTestRecipe(t, db, &chef.ID, testhelpers.WithCategory(models.CategoryDinner))
	require.NoError(t, recipes.AddFavorite(ctx, liked.ID, me.ID))

	base := time.Now().Add(-time.Hour)
	var lunchIDs []uuid.UUID
	for i := 0; i < 7; i++ {
		r := testhelpers.CreateTestRecipe(t, db, &chef.ID,
			testhelpers.WithCategory(models.CategoryLunch),
			testhelpers.WithAvgRating(float64(i%5)),
			testhelpers.WithCreatedAt(base.Add(time.Duration(i)*time.Minute)))
		lunchIDs = append(lunchIDs, r.ID)
	}
	testhelpers.CreateTestRecipe(t, db, nil,
		testhelpers.WithCategory(models.CategoryBreakfast),
		testhelpers.WithAvgRating(5))

	got, err = svc.For(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, got, service.RecommendationLimit)
	for i, r := range got {
		assert.NotEqual(t, models.CategoryBreakfast, r.Category)
		assert.False(t, r.IsOwnedBy(me.ID))
		if i > 0 {
			prev := got[i-1]
			assert.True(t, prev.AvgRating > r.AvgRating ||
				(prev.AvgRating == r.AvgRating && !prev.CreatedAt.Before(r.CreatedAt)))
		}
	}
	assert.Equal(t, lunchIDs[4], got[0].ID)
}
