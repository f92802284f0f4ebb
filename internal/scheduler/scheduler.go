package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/service/match"
)

const defaultInterval = 5 * time.Second

// Promoter sends every scheduled message that is due.
type Promoter interface {
	PromoteAllDue(ctx context.Context) (int64, error)
}

// Reconciler runs a full match reconciliation pass.
type Reconciler interface {
	Reconcile(ctx context.Context) (match.Result, error)
}

// Scheduler drives the server-side periodic jobs: scheduled message
// promotion and, optionally, match reconciliation.
type Scheduler struct {
	promoter          Promoter
	reconciler        Reconciler
	interval          time.Duration
	reconcileInterval time.Duration
	log               *slog.Logger
}

func New(cfg *config.Config, promoter Promoter, reconciler Reconciler, log *slog.Logger) *Scheduler {
	interval := cfg.Scheduler.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		promoter:          promoter,
		reconciler:        reconciler,
		interval:          interval,
		reconcileInterval: cfg.Scheduler.ReconcileInterval,
		log:               log.With("component", "scheduler"),
	}
}

// Run blocks until ctx is done. Job errors are logged and the loop goes on.
func (s *Scheduler) Run(ctx context.Context) error {
	promote := time.NewTicker(s.interval)
	defer promote.Stop()

	// a nil channel never fires, which disables reconciliation
	var reconcileC <-chan time.Time
	if s.reconciler != nil && s.reconcileInterval > 0 {
		reconcile := time.NewTicker(s.reconcileInterval)
		defer reconcile.Stop()
		reconcileC = reconcile.C
	}

	s.log.Info("scheduler started", "interval", s.interval, "reconcile_interval", s.reconcileInterval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return nil

		case <-promote.C:
			n, err := s.promoter.PromoteAllDue(ctx)
			if err != nil {
				s.log.Error("promote due messages failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Info("promoted scheduled messages", "count", n)
			}

		case <-reconcileC:
			res, err := s.reconciler.Reconcile(ctx)
			if err != nil {
				s.log.Error("reconcile failed", "err", err)
				continue
			}
			s.log.Debug("reconcile tick", "friendships", res.FriendshipsCreated, "skipped", res.Skipped)
		}
	}
}
