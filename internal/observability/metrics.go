// Package observability provides application metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// StoreRetries counts store operations retried after a busy or serialization failure.
	StoreRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_store_retries_total",
		Help: "Total number of retried store operations",
	}, []string{"operation"})

	// DatabaseQueryLatency records store operation latency.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// LikesToggled counts like toggles by resulting state.
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_likes_toggled_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// AuthAttempts counts login attempts by result.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_auth_attempts_total",
		Help: "Total number of authentication attempts by result",
	}, []string{"result"})

	// ContentCreated counts created posts and comments.
	ContentCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_content_created_total",
		Help: "Total number of created posts and comments",
	}, []string{"kind"})
)
