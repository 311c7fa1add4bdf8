// ABOUTME: Prometheus metrics for HTTP, chat, assistant, and storage
// ABOUTME: Registered at package load via promauto on the default registry

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimpse_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glimpse_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Chat metrics
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glimpse_ws_connections_active",
			Help: "Currently open WebSocket connections",
		},
		[]string{"room_type"}, // "public" or "private"
	)

	MessagesBroadcast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimpse_chat_messages_total",
			Help: "Chat messages fanned out to rooms",
		},
		[]string{"room_type"},
	)

	DroppedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glimpse_chat_dropped_frames_total",
			Help: "Inbound frames dropped as malformed",
		},
	)

	DroppedDeliveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glimpse_chat_dropped_deliveries_total",
			Help: "Events dropped because a subscriber's buffer was full",
		},
	)

	// Assistant metrics
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glimpse_assistant_requests_total",
			Help: "LLM assistant requests by outcome",
		},
		[]string{"outcome"}, // "ok" or "error"
	)

	AssistantLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "glimpse_assistant_latency_seconds",
			Help:    "LLM assistant round-trip latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	// Media metrics
	MediaUploads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glimpse_media_uploads_total",
			Help: "Media items uploaded",
		},
	)
)
