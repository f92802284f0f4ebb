package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/service/entitlement"
	"github.com/oggyb/glidefade/internal/service/interaction"
	"github.com/oggyb/glidefade/internal/service/match"
	"github.com/oggyb/glidefade/internal/service/media"
	"github.com/oggyb/glidefade/internal/service/message"
	"github.com/oggyb/glidefade/internal/service/notification"
	"github.com/oggyb/glidefade/internal/service/profile"
	"github.com/oggyb/glidefade/internal/service/video"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

// Services is everything the HTTP surface dispatches to.
type Services struct {
	Interactions  *interaction.Service
	Matches       *match.Service
	Notifications *notification.Service
	Messages      *message.Service
	Profiles      *profile.Service
	Videos        *video.Service
	Media         *media.Service
	Entitlements  *entitlement.Service
}

// NewRouter builds the public API. gatherer backs /metrics; nil means
// the default registry.
func NewRouter(cfg *config.Config, svc Services, auth middleware.Validator, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	if cfg.HTTP.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.HTTP.RateLimit, time.Minute))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", EntitlementHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	interactions := NewInteractionHandler(svc.Interactions, svc.Entitlements)
	notifications := NewNotificationHandler(svc.Notifications, svc.Matches)
	messages := NewMessageHandler(svc.Messages)
	profiles := NewProfileHandler(svc.Profiles)
	videos := NewVideoHandler(svc.Videos)
	uploads := NewMediaHandler(svc.Media, cfg.S3.MaxUploadBytes)
	entitlements := NewEntitlementHandler(svc.Entitlements)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(auth))

		r.Post("/match-dismatch", interactions.Record)
		r.Post("/check-and-create-match-notification", notifications.Command)

		r.Get("/notifications", notifications.List)
		r.Get("/notifications/unread-count", notifications.UnreadCount)
		r.Post("/notifications/{id}/read", notifications.MarkRead)

		r.Get("/messages", messages.Conversation)
		r.Post("/messages", messages.Send)
		r.Post("/messages/send-due", messages.SendDue)
		r.Get("/messages/{id}", messages.Get)
		r.Delete("/messages/{id}", messages.Delete)

		r.Get("/profile/all", profiles.Feed)
		r.Post("/profile", profiles.Save)
		r.Get("/profile/details", profiles.Details)
		r.Post("/profile/details", profiles.SaveDetails)
		r.Get("/profile/{userId}", profiles.Get)
		r.Get("/friends", profiles.Friends)

		r.Get("/videos", videos.List)
		r.Post("/videos", videos.Create)
		r.Get("/videos/{id}", videos.Get)
		r.Post("/videos/{id}/like", videos.Like)
		r.Post("/videos/{id}/share", videos.Share)
		r.Post("/videos/{id}/comments", videos.Comment)

		r.Post("/upload", uploads.Upload)
		r.Post("/entitlements", entitlements.Issue)
	})

	return r
}
