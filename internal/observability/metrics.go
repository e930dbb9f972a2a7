// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chattym_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikeToggles counts like toggles by resulting action.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_like_toggles_total",
		Help: "Total number of like toggles by action",
	}, []string{"action"})

	// UniqueRaceRecoveries counts uniqueness violations converged locally.
	UniqueRaceRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_unique_race_recoveries_total",
		Help: "Uniqueness-constraint races recovered without surfacing an error",
	}, []string{"entity"})

	// MessagesSent counts chat messages persisted.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chattym_messages_sent_total",
		Help: "Total number of chat messages sent",
	})

	// NotificationsCreated counts notifications written, by verb.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_notifications_created_total",
		Help: "Total number of notifications created",
	}, []string{"verb"})

	// NotificationFailures counts best-effort notification writes or pushes that failed.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_notification_failures_total",
		Help: "Total number of failed notification writes or pushes",
	}, []string{"stage"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chattym_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chattym_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
