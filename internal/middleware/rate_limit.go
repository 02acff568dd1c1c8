package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pageza/recipeshare/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter enforces a per-client request budget. With a Redis client the
// budget is a fixed window shared by every instance; without one each
// process keeps token buckets in memory.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger zerolog.Logger) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit:api"
	}
	return &RateLimiter{
		redis:   redisClient,
		config:  config,
		logger:  logger,
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// per client IP
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), c.ClientIP())
		if err != nil {
			// Fail open: a broken limiter must not take the API down.
			rl.logger.Warn().Err(err).Msg("rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			endpoint := c.FullPath()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			metrics.APIRateLimitHits.WithLabelValues(endpoint).Inc()

			retry := int(resetTime.Sub(rl.now()).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request from key and reports whether it fits the budget.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error) {
	if rl.redis == nil {
		allowed, remaining, reset := rl.allowLocal(key)
		return allowed, remaining, reset, nil
	}

	now := rl.now()
	windowStart := now.Truncate(rl.config.Window)
	redisKey := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())

	// Use Redis pipeline for atomic operations
	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// allowLocal spends one token from key's bucket. A bucket holds Limit tokens
// and refills at Limit per Window.
func (rl *RateLimiter) allowLocal(key string) (bool, int, time.Time) {
	rl.mu.Lock()
	limiter, ok := rl.buckets[key]
	if !ok {
		every := rate.Every(rl.config.Window / time.Duration(rl.config.Limit))
		limiter = rate.NewLimiter(every, rl.config.Limit)
		rl.buckets[key] = limiter
	}
	rl.mu.Unlock()

	now := rl.now()
	allowed := limiter.AllowN(now, 1)
	tokens := int(limiter.TokensAt(now))
	if tokens < 0 {
		tokens = 0
	}

	// Time until one more token is available.
	reset := now
	if !allowed || tokens == 0 {
		reset = now.Add(rl.config.Window / time.Duration(rl.config.Limit))
	}
	return allowed, tokens, reset
}
