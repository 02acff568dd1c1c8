package seed_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/seed"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func TestRecipesWithinBounds(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recipes := seed.Recipes(rand.New(rand.NewPCG(1, 2)), 50, now)
	require.Len(t, recipes, 50)

	for _, r := range recipes {
		assert.NotEmpty(t, r.Title)
		assert.Contains(t, []string{"breakfast", "lunch", "dinner"}, r.Category)
		assert.Contains(t, []string{"easy", "medium", "hard"}, r.Difficulty)
		assert.GreaterOrEqual(t, len(r.Ingredients), 5)
		assert.LessOrEqual(t, len(r.Ingredients), 9)
		assert.GreaterOrEqual(t, len(r.Instructions), 4)
		assert.LessOrEqual(t, len(r.Instructions), 7)
		assert.True(t, r.Instructions[0][0] == '1')
		require.NotNil(t, r.CookingTime)
		assert.GreaterOrEqual(t, *r.CookingTime, 5)
		assert.LessOrEqual(t, *r.CookingTime, 120)
		assert.GreaterOrEqual(t, r.AvgRating, 0.0)
		assert.LessOrEqual(t, r.AvgRating, 5.0)
		assert.False(t, r.CreatedAt.After(now))
		assert.True(t, r.CreatedAt.After(now.Add(-61*24*time.Hour)))
		assert.Nil(t, r.OwnerID)
		assert.NotNil(t, r.Embedding)

		seen := map[string]bool{}
		for _, ing := range r.Ingredients {
			assert.False(t, seen[ing], "duplicate ingredient %q", ing)
			seen[ing] = true
		}
	}
}

func TestInsertRecipesAndUsers(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()

	recipes := seed.Recipes(rand.New(rand.NewPCG(3, 4)), 12, time.Now())
	require.NoError(t, seed.InsertRecipes(ctx, db, recipes))

	var count int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Equal(t, int64(12), count)

	created, err := seed.InsertUsers(ctx, db, seed.DemoUsers, "password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, len(seed.DemoUsers), created)

	// Running again is a no-op.
	created, err = seed.InsertUsers(ctx, db, seed.DemoUsers, "password123", bcrypt.MinCost)
	require.NoError(t, err)
	assert.Zero(t, created)
}
