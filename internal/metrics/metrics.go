package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AuthenticationAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authentication_attempts_total",
			Help: "Bearer token validations, by method and result.",
		},
		[]string{"method", "result"},
	)

	SwipesRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipes_recorded_total",
			Help: "Swipe decisions recorded, by action.",
		},
		[]string{"action"},
	)

	SwipesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "swipes_rejected_total",
			Help: "Swipes refused because the daily quota was used up.",
		},
	)

	FriendshipsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "friendships_created_total",
			Help: "Mutual matches promoted to friendships.",
		},
	)

	NotificationsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notifications written, by type.",
		},
		[]string{"type"},
	)

	ReconcileRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconcile_runs_total",
			Help: "Full reconciliation passes, by outcome.",
		},
		[]string{"outcome"},
	)

	MessagesStoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_stored_total",
			Help: "Total number of stored messages.",
		},
		[]string{"type"},
	)

	MessagesPromotedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_promoted_total",
			Help: "Scheduled messages promoted to sent.",
		},
	)

	UploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upload_bytes",
			Help:    "Sizes of uploaded media objects.",
			Buckets: prometheus.ExponentialBuckets(64<<10, 4, 8),
		},
	)
)

// MustRegister registers every collector on reg. Call once from main.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		AuthenticationAttemptsTotal,
		SwipesRecordedTotal,
		SwipesRejectedTotal,
		FriendshipsCreatedTotal,
		NotificationsCreatedTotal,
		ReconcileRunsTotal,
		MessagesStoredTotal,
		MessagesPromotedTotal,
		UploadBytes,
	)
}
