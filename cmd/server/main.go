package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/cache"
	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/logger"
	"github.com/oggyb/glidefade/internal/metrics"
	"github.com/oggyb/glidefade/internal/scheduler"
	"github.com/oggyb/glidefade/internal/server"
	"github.com/oggyb/glidefade/internal/service/entitlement"
	"github.com/oggyb/glidefade/internal/service/interaction"
	"github.com/oggyb/glidefade/internal/service/match"
	"github.com/oggyb/glidefade/internal/service/media"
	"github.com/oggyb/glidefade/internal/service/message"
	"github.com/oggyb/glidefade/internal/service/notification"
	"github.com/oggyb/glidefade/internal/service/profile"
	"github.com/oggyb/glidefade/internal/service/video"
	"github.com/oggyb/glidefade/internal/storage"
	"github.com/oggyb/glidefade/internal/transport/http/handlers"
	"github.com/oggyb/glidefade/internal/transport/http/middleware"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	appCtx := app.New(cfg, database, redisCache, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	auth, closeAuth, err := newValidator(ctx, cfg)
	if err != nil {
		log.Error("failed to init auth", "err", err)
		os.Exit(1)
	}
	defer closeAuth()

	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		log.Error("failed to init object storage", "err", err)
		os.Exit(1)
	}

	notifications := notification.NewService(appCtx)
	matches := match.NewService(appCtx, notifications)
	messages := message.NewService(appCtx)

	router := handlers.NewRouter(cfg, handlers.Services{
		Interactions:  interaction.NewService(appCtx, matches),
		Matches:       matches,
		Notifications: notifications,
		Messages:      messages,
		Profiles:      profile.NewService(appCtx),
		Videos:        video.NewService(appCtx),
		Media:         media.NewService(appCtx, store),
		Entitlements:  entitlement.NewService(appCtx),
	}, auth, prometheus.DefaultGatherer)

	health := server.NewHealthRegistrar("glidefade")
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting HTTP server", "addr", cfg.HTTP.Host+":"+cfg.HTTP.Port)
		return server.StartHTTPServer(gctx, cfg, router)
	})
	g.Go(func() error {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		return server.StartGRPCServer(gctx, cfg, health)
	})
	g.Go(func() error {
		health.Watch(gctx, 10*time.Second, func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return redisCache.Ping(ctx)
		}, log)
		return nil
	})
	g.Go(func() error {
		return scheduler.New(cfg, messages, matches, log).Run(gctx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "err", err)
		health.Shutdown()
		os.Exit(1)
	}
	health.Shutdown()
	log.Info("server stopped")
}

// newValidator prefers the issuer's JWKS and falls back to a shared
// HS256 secret. One of them must be configured.
func newValidator(ctx context.Context, cfg *config.Config) (middleware.Validator, func(), error) {
	if cfg.Auth.JWKSURL != "" {
		v, err := middleware.NewJWKSValidator(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer)
		if err != nil {
			return nil, nil, err
		}
		return v, v.Close, nil
	}
	if cfg.Auth.HS256Secret != "" {
		return middleware.NewHMACValidator(cfg.Auth.HS256Secret, cfg.Auth.Issuer), func() {}, nil
	}
	return nil, nil, errors.New("no token validator configured: set AUTH_JWKS_URL or AUTH_HS256_SECRET")
}
