package match

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/oggyb/glidefade/internal/app"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/metrics"
	"github.com/oggyb/glidefade/internal/repository"
)

// lockTTL bounds how long a crashed pass can block the next one.
const lockTTL = 2 * time.Minute

// Notifier emits the match notification for one direction of a pair.
type Notifier interface {
	NotifyMatch(ctx context.Context, userID, fromUserID string) (bool, error)
}

// Result summarizes one reconciliation run.
type Result struct {
	PairsScanned         int  `json:"pairs_scanned"`
	FriendshipsCreated   int  `json:"friendships_created"`
	NotificationsCreated int  `json:"notifications_created"`
	Skipped              bool `json:"skipped,omitempty"`
}

// Service turns mutual likes into friendships.
type Service struct {
	appCtx       *app.AppContext
	interactions *repository.InteractionRepository
	friends      *repository.FriendRepository
	notifier     Notifier
}

func NewService(appCtx *app.AppContext, notifier Notifier) *Service {
	return &Service{
		appCtx:       appCtx,
		interactions: repository.NewInteractionRepository(appCtx.DB),
		friends:      repository.NewFriendRepository(appCtx.DB),
		notifier:     notifier,
	}
}

// Reconcile walks every mutual like and promotes the ones that are not
// friends yet.
//
// Behavior:
//   - Each unordered pair {A, B} is visited once.
//   - A pair is new iff B is not in friends(A); notifications are not consulted.
//   - Promotion writes both friend sets in one transaction, then notifies
//     each direction. Notification failures are logged and swallowed.
//   - Running it again with no new mutual likes writes nothing.
//   - A concurrent full pass holding reconcile:lock makes this one return
//     Result{Skipped: true}.
func (s *Service) Reconcile(ctx context.Context) (Result, error) {
	release, err := s.appCtx.RedisCache.AcquireLock(ctx, s.appCtx.RedisCache.KeyForReconcileLock(), uuid.NewString(), lockTTL)
	switch {
	case err != nil:
		// without Redis we still run; the transactional writes keep it safe
		s.appCtx.Logger.Warn("reconcile lock unavailable", "err", err)
	case release == nil:
		metrics.ReconcileRunsTotal.WithLabelValues("skipped").Inc()
		s.appCtx.Logger.Debug("reconcile already running elsewhere")
		return Result{Skipped: true}, nil
	default:
		defer release(context.WithoutCancel(ctx))
	}

	sets, err := s.interactions.AllMatchSets(ctx)
	if err != nil {
		metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
		return Result{}, svcErr.Map(err)
	}
	friendSets, err := s.friends.All(ctx)
	if err != nil {
		metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
		return Result{}, svcErr.Map(err)
	}

	likes := make(map[string]map[string]struct{}, len(sets))
	for _, set := range sets {
		m := make(map[string]struct{}, len(set.Matches))
		for _, id := range set.Matches {
			m[id] = struct{}{}
		}
		likes[set.UserID] = m
	}

	var res Result
	for _, set := range sets {
		a := set.UserID
		for _, b := range set.Matches {
			// visit {a, b} only from its smaller side
			if b <= a {
				continue
			}
			if _, mutual := likes[b][a]; !mutual {
				continue
			}
			res.PairsScanned++
			if slices.Contains(friendSets[a], b) {
				continue
			}
			if err := s.promote(ctx, a, b, &res); err != nil {
				metrics.ReconcileRunsTotal.WithLabelValues("error").Inc()
				return res, err
			}
		}
	}

	metrics.ReconcileRunsTotal.WithLabelValues("ok").Inc()
	s.appCtx.Logger.Info("reconcile finished",
		"pairs", res.PairsScanned,
		"friendships", res.FriendshipsCreated,
		"notifications", res.NotificationsCreated,
	)
	return res, nil
}

// ReconcilePair does the same work as Reconcile for a single pair. Used
// right after a like so a mutual match shows up without waiting for the
// next full pass.
func (s *Service) ReconcilePair(ctx context.Context, a, b string) (Result, error) {
	var res Result
	if a == "" || b == "" || a == b {
		return res, svcErr.InvalidArgument("two distinct user ids are required")
	}

	ab, err := s.interactions.HasMatched(ctx, a, b)
	if err != nil {
		return res, svcErr.Map(err)
	}
	ba, err := s.interactions.HasMatched(ctx, b, a)
	if err != nil {
		return res, svcErr.Map(err)
	}
	if !ab || !ba {
		return res, nil
	}
	res.PairsScanned = 1

	already, err := s.friends.AreFriends(ctx, a, b)
	if err != nil {
		return res, svcErr.Map(err)
	}
	if already {
		return res, nil
	}
	if err := s.promote(ctx, a, b, &res); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) promote(ctx context.Context, a, b string, res *Result) error {
	created, err := s.friends.AddPair(ctx, a, b)
	if err != nil {
		s.appCtx.Logger.Error("friendship promotion failed", "a", a, "b", b, "err", err)
		return svcErr.Map(fmt.Errorf("promote %s/%s: %w", a, b, err))
	}
	if !created {
		// someone else promoted it between our read and the locked write
		return nil
	}
	res.FriendshipsCreated++
	metrics.FriendshipsCreatedTotal.Inc()

	for _, dir := range [][2]string{{a, b}, {b, a}} {
		ok, err := s.notifier.NotifyMatch(ctx, dir[0], dir[1])
		if err != nil {
			s.appCtx.Logger.Warn("match notification failed", "user", dir[0], "from", dir[1], "err", err)
			continue
		}
		if ok {
			res.NotificationsCreated++
		}
	}
	return nil
}
