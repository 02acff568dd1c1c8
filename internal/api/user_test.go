package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
	"github.com/pageza/recipeshare/backend/internal/types"
)

func TestGetMe(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)

	w := env.request(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodGet, "/api/users/me", testhelpers.TokenFor(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]any](t, w)
	assert.Equal(t, user.ID.String(), body["id"])
	assert.Equal(t, user.Email, body["email"])
	assert.NotContains(t, body, "passwordHash")
	assert.NotContains(t, body, "isEmailVerified")
}

func TestUpdateMe(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)
	taken := testhelpers.CreateTestUser(t, env.db)
	token := testhelpers.TokenFor(t, user)

	w := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{"name": "New Name", "email": taken.Email})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Email already in use"}`, w.Body.String())

	w = env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{"name": "New Name", "email": "  Renamed@Example.com "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decodeBody[types.UserView](t, w)
	assert.Equal(t, "New Name", view.Name)
	assert.Equal(t, "renamed@example.com", view.Email)

	var stored models.User
	require.NoError(t, env.db.First(&stored, "id = ?", user.ID).Error)
	assert.Equal(t, "renamed@example.com", stored.Email)
}

func TestMyRecipesAndFavorites(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)
	token := testhelpers.TokenFor(t, user)
	mine := testhelpers.CreateTestRecipe(t, env.db, &user.ID, testhelpers.WithTitle("Mine"))
	theirs := testhelpers.CreateTestRecipe(t, env.db, nil, testhelpers.WithTitle("Theirs"))

	w := env.request(t, http.MethodGet, "/api/users/me/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody[struct{ Items []types.RecipeView }](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	require.Equal(t, http.StatusOK, env.request(t, http.MethodPost, "/api/recipes/"+theirs.ID.String()+"/favorite", token, nil).Code)

	w = env.request(t, http.MethodGet, "/api/users/me/favorites", token, nil)
	items = decodeBody[struct{ Items []types.RecipeView }](t, w).Items
	require.Len(t, items, 1)
	assert.Equal(t, theirs.ID, items[0].ID)
	assert.True(t, items[0].IsFavorite)
}

func TestDeleteMe(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)
	token := testhelpers.TokenFor(t, user)
	owned := testhelpers.CreateTestRecipe(t, env.db, &user.ID)
	other := testhelpers.CreateTestRecipe(t, env.db, nil)

	require.Equal(t, http.StatusOK, env.request(t, http.MethodPost, "/api/recipes/"+other.ID.String()+"/rating", token, map[string]int{"value": 4}).Code)
	require.Equal(t, http.StatusCreated, env.request(t, http.MethodPost, "/api/comments/recipe/"+other.ID.String(), token, map[string]string{"text": "Yum"}).Code)

	w := env.request(t, http.MethodDelete, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Where("id = ?", owned.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.RecipeRating{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)

	w = env.request(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
