package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// HealthRegistrar exposes grpc.health.v1.Health. The overall status ("")
// and every named service start as SERVING.
type HealthRegistrar struct {
	health   *health.Server
	services []string
}

func NewHealthRegistrar(services ...string) *HealthRegistrar {
	return &HealthRegistrar{health: health.NewServer(), services: services}
}

func (h *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Watch runs check every interval and flips every status to NOT_SERVING
// while it fails. Returns when ctx is done.
func (h *HealthRegistrar) Watch(ctx context.Context, interval time.Duration, check func(context.Context) error, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cctx, cancel := context.WithTimeout(ctx, interval)
			err := check(cctx)
			cancel()

			switch {
			case err != nil && serving:
				log.Warn("health check failing", "err", err)
				h.set(healthpb.HealthCheckResponse_NOT_SERVING)
				serving = false
			case err == nil && !serving:
				log.Info("health check recovered")
				h.set(healthpb.HealthCheckResponse_SERVING)
				serving = true
			}
		}
	}
}

// Shutdown reports NOT_SERVING everywhere and ignores later updates.
func (h *HealthRegistrar) Shutdown() {
	h.health.Shutdown()
}

func (h *HealthRegistrar) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	for _, name := range h.services {
		h.health.SetServingStatus(name, status)
	}
}
