package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/testhelpers"
	"github.com/pageza/recipeshare/backend/internal/types"
)

func TestRegisterValidation(t *testing.T) {
	env := setupTestRouter(t)

	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"short name", map[string]string{"name": "A", "email": "a@example.com", "password": "secret1"}, `"name"`},
		{"bad email", map[string]string{"name": "Ann", "email": "nope", "password": "secret1"}, `"email"`},
		{"short password", map[string]string{"name": "Ann", "email": "a@example.com", "password": "123"}, `"password"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.request(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeBody[map[string]any](t, w)["message"], tt.want)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)

	w := env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Someone", "email": user.Email, "password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Email already in use"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": user.Email, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid credentials"}`, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": user.Email, "password": testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[types.AuthResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotContains(t, w.Body.String(), "isEmailVerified")

	w = env.request(t, http.MethodGet, "/api/users/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMalformedBody(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(t, http.MethodPost, "/api/auth/login", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Invalid request body"}`, w.Body.String())
}

func TestPasswordResetFlow(t *testing.T) {
	env := setupTestRouter(t)
	user := testhelpers.CreateTestUser(t, env.db)

	w := env.request(t, http.MethodPost, "/api/auth/reset-password/request", "", map[string]string{"email": "missing@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/reset-password/request", "", map[string]string{"email": user.Email})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	mail, ok := env.mailer.Last("password_reset")
	require.True(t, ok)

	w = env.request(t, http.MethodPost, "/api/auth/reset-password/confirm", "", map[string]string{
		"token": "bogus", "password": "newsecret",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/reset-password/confirm", "", map[string]string{
		"token": mail.Token, "password": "newsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": user.Email, "password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResendVerification(t *testing.T) {
	env := setupTestRouter(t)
	verified := testhelpers.CreateTestUser(t, env.db)

	w := env.request(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{"email": verified.Email})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "New User", "email": "new@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.mailer.Sent, 2)
}
