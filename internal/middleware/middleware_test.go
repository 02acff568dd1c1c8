package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipeshare/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	claims map[string]*types.TokenClaims
}

func (v stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if c, ok := v.claims[token]; ok {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func whoami(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": ""})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.String()})
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	validator := stubValidator{claims: map[string]*types.TokenClaims{
		"good": {UserID: userID},
	}}

	router := gin.New()
	router.GET("/private", AuthMiddleware(validator), whoami)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), userID.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	userID := uuid.New()
	validator := stubValidator{claims: map[string]*types.TokenClaims{
		"good": {UserID: userID},
	}}

	router := gin.New()
	router.GET("/public", OptionalAuth(validator), whoami)

	for header, want := range map[string]string{
		"":            `{"user":""}`,
		"Bearer bad":  `{"user":""}`,
		"Bearer good": `{"user":"` + userID.String() + `"}`,
	} {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, want, w.Body.String(), "header %q", header)
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })
	router.NoRoute(NotFound())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Not found"}`, w.Body.String())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
}

func TestCORS(t *testing.T) {
	t.Run("wildcard echoes origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"*"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://app.test")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unlisted origin rejected", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"http://app.test"}))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://evil.test")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimiterInMemory(t *testing.T) {
	limiter := NewRateLimiter(nil, RateLimitConfig{Window: time.Minute, Limit: 3}, zerolog.Nop())
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	router := gin.New()
	router.Use(limiter.RateLimitMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	}
	w := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"message"`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Separate clients have separate budgets.
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)

	// One token is back after a third of the window.
	now = now.Add(21 * time.Second)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1").Code)
}
