// Package metrics holds the Prometheus collectors for the API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of requests currently being served",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	RecipeRatings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_ratings_total",
			Help: "Ratings submitted",
		},
	)

	RecipeFavorites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_favorites_total",
			Help: "Favorite set changes",
		},
		[]string{"action"}, // "add", "remove"
	)

	AccountsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "accounts_deleted_total",
			Help: "Accounts removed with their cascade",
		},
	)

	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Outgoing mail attempts",
		},
		[]string{"kind", "result"}, // result: "sent", "logged", "failed"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
