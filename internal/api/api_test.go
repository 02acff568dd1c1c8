package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testMaxUpload = 1 << 20

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	mailer *testhelpers.RecordingMailer
	images *testhelpers.MemoryImageStore
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	mailer := &testhelpers.RecordingMailer{}
	images := testhelpers.NewMemoryImageStore()
	logger := zerolog.Nop()

	authService := service.NewAuthService(db, config.AuthConfig{
		JWTSecret:       testhelpers.TestJWTSecret,
		TokenTTL:        time.Hour,
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}, mailer, logger)
	recipes := service.NewRecipeService(db, service.NewImageService(images, logger), logger)

	auth := api.NewAuth(authService, db)
	handlers := api.Handlers{
		Health:   api.NewHealthHandler(db),
		Auth:     api.NewAuthHandler(authService),
		Recipes:  api.NewRecipeHandler(recipes, service.NewRecommendationService(db, logger), auth, testMaxUpload),
		Comments: api.NewCommentHandler(service.NewCommentService(db, logger), auth),
		Users:    api.NewUserHandler(service.NewUserService(db, logger), recipes, auth),
	}

	router := gin.New()
	handlers.RegisterRoutes(router.Group("/api"))
	router.NoRoute(middleware.NotFound())

	return &testEnv{router: router, db: db, mailer: mailer, images: images}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := setupTestRouter(t)

	w := env.request(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true}`, w.Body.String())
}
