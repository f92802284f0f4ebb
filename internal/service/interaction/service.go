package interaction

import (
	"context"
	"time"

	"github.com/oggyb/glidefade/internal/app"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/metrics"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/service/entitlement"
	"github.com/oggyb/glidefade/internal/service/match"
)

const (
	ActionMatch    = "match"
	ActionDismatch = "dismatch"

	// quota keys outlive the UTC day they count so late swipes still land in the right bucket
	quotaTTL = 25 * time.Hour
)

// PairReconciler promotes a single pair once both sides liked each other.
type PairReconciler interface {
	ReconcilePair(ctx context.Context, a, b string) (match.Result, error)
}

// RecordInput is one swipe.
type RecordInput struct {
	UserID       string `json:"userId" validate:"required"`
	TargetUserID string `json:"targetUserId" validate:"required"`
	Action       string `json:"action" validate:"required,oneof=match dismatch"`
}

// RecordResult is returned to the client after a swipe.
type RecordResult struct {
	Message string `json:"message"`
	Matched bool   `json:"matched"`
}

// Service records swipe decisions.
type Service struct {
	appCtx     *app.AppContext
	repo       *repository.InteractionRepository
	reconciler PairReconciler
	now        func() time.Time
}

func NewService(appCtx *app.AppContext, reconciler PairReconciler) *Service {
	return &Service{
		appCtx:     appCtx,
		repo:       repository.NewInteractionRepository(appCtx.DB),
		reconciler: reconciler,
		now:        time.Now,
	}
}

// Record stores userID's decision about targetUserID.
//
// Behavior:
//   - Validates ids (non-empty, distinct) and action.
//   - Enforces the daily swipe quota from ent; nil ent means free tier.
//     Only a swipe that lands in a set is counted: repeats and failed
//     writes hand the swipe back.
//   - Appends the target to the match or dismatch set, never twice.
//   - After a match, reconciles the pair so mutual likes become friends at once.
func (s *Service) Record(ctx context.Context, in RecordInput, ent *entitlement.Claims) (*RecordResult, error) {
	if in.UserID == "" || in.TargetUserID == "" {
		return nil, svcErr.InvalidArgument("userId and targetUserId are required")
	}
	if in.UserID == in.TargetUserID {
		return nil, svcErr.InvalidArgument("cannot swipe on yourself")
	}
	if in.Action != ActionMatch && in.Action != ActionDismatch {
		return nil, svcErr.InvalidArgument("action must be match or dismatch")
	}

	refund, err := s.chargeQuota(ctx, in.UserID, ent)
	if err != nil {
		return nil, err
	}

	var added bool
	if in.Action == ActionMatch {
		added, err = s.repo.AddMatch(ctx, in.UserID, in.TargetUserID)
	} else {
		added, err = s.repo.AddDismatch(ctx, in.UserID, in.TargetUserID)
	}
	if err != nil {
		refund(ctx)
		s.appCtx.Logger.Error("record swipe failed", "user", in.UserID, "target", in.TargetUserID, "action", in.Action, "err", err)
		return nil, svcErr.Map(err)
	}
	if !added {
		// repeat swipe on the same target is free
		refund(ctx)
	}
	metrics.SwipesRecordedTotal.WithLabelValues(in.Action).Inc()

	res := &RecordResult{Message: "Dismatch recorded"}
	if in.Action == ActionDismatch {
		return res, nil
	}

	res.Message = "Match recorded"
	if s.reconciler != nil {
		pair, err := s.reconciler.ReconcilePair(ctx, in.UserID, in.TargetUserID)
		if err != nil {
			// picked up by the next full pass
			s.appCtx.Logger.Warn("pair reconcile failed", "user", in.UserID, "target", in.TargetUserID, "err", err)
		} else if pair.PairsScanned > 0 {
			res.Matched = true
		}
	}
	return res, nil
}

// chargeQuota takes one swipe from userID's daily allowance. The returned
// func gives it back; it is a no-op when nothing was charged.
func (s *Service) chargeQuota(ctx context.Context, userID string, ent *entitlement.Claims) (func(context.Context), error) {
	noop := func(context.Context) {}

	limit := s.appCtx.Config.Swipe.DailyLimit
	if ent != nil {
		if ent.Unlimited() {
			return noop, nil
		}
		limit = ent.SwipeLimit
	}
	if limit <= 0 {
		return noop, nil
	}

	key := s.appCtx.RedisCache.KeyForSwipes(userID, s.now())
	n, err := s.appCtx.RedisCache.IncrWithTTL(ctx, key, quotaTTL)
	if err != nil {
		// best effort: no Redis, no quota
		s.appCtx.Logger.Warn("swipe quota check failed", "user", userID, "err", err)
		return noop, nil
	}
	refund := func(ctx context.Context) {
		if _, err := s.appCtx.RedisCache.Decr(ctx, key); err != nil {
			s.appCtx.Logger.Warn("swipe quota refund failed", "user", userID, "err", err)
		}
	}
	if n > int64(limit) {
		refund(ctx)
		metrics.SwipesRejectedTotal.Inc()
		return noop, svcErr.TooManyRequests("swipe limit reached")
	}
	return refund, nil
}
