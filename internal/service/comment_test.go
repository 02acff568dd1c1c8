package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/apperrors"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func TestComments(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	svc := service.NewCommentService(db, zerolog.Nop())
	author := testhelpers.CreateTestUser(t, db)
	stranger := testhelpers.CreateTestUser(t, db)
	recipe := testhelpers.CreateTestRecipe(t, db, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, recipe.ID, author.ID, "   ")
	assert.ErrorIs(t, err, service.ErrCommentRequired)

	_, err = svc.Create(ctx, recipe.ID, author.ID, strings.Repeat("x", service.MaxCommentLength+1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, uuid.New(), author.ID, "hello")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	first, err := svc.Create(ctx, recipe.ID, author.ID, " first ")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Text)
	assert.Equal(t, author.Email, first.User.Email)

	time.Sleep(5 * time.Millisecond)
	second, err := svc.Create(ctx, recipe.ID, stranger.ID, "second")
	require.NoError(t, err)

	list, err := svc.ListForRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, stranger.Name, list[0].User.Name)

	assert.ErrorIs(t, svc.Delete(ctx, first.ID, stranger.ID), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), author.ID), service.ErrCommentNotFound)
	require.NoError(t, svc.Delete(ctx, first.ID, author.ID))

	list, err = svc.ListForRecipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
