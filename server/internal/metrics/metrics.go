package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsx_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "opsx_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Socket metrics
	SocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "opsx_socket_connections",
			Help: "Authenticated Socket.IO connections",
		},
	)

	SocketAuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opsx_socket_auth_failures_total",
			Help: "Socket.IO handshakes rejected",
		},
	)

	RoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "opsx_room_joins_total",
			Help: "Total join_room requests accepted",
		},
	)

	// Business metrics
	ChatMessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsx_chat_messages_posted_total",
			Help: "Total chat messages posted",
		},
		[]string{"source"}, // "socket" or "rest"
	)

	AgentStatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsx_agent_status_updates_total",
			Help: "Total agent status reports",
		},
		[]string{"status"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opsx_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"event"},
	)

	// Infrastructure metrics
	RedisLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "opsx_redis_latency_seconds",
			Help:    "Redis operation latency",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05},
		},
	)
)
