package notification

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/db"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/metrics"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/utils/pagination"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	matchMessage = "You have a new match!"
)

// Page is one page of notifications plus the token for the next one.
type Page struct {
	Notifications []db.Notification `json:"notifications"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

// Service owns the notification log and the cached unread counter.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.NotificationRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewNotificationRepository(appCtx.DB),
	}
}

// NotifyMatch tells userID that fromUserID matched with them. At most one
// such notification exists per direction; repeats report created=false.
func (s *Service) NotifyMatch(ctx context.Context, userID, fromUserID string) (bool, error) {
	exists, err := s.repo.Exists(ctx, userID, fromUserID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	created, err := s.repo.Create(ctx, &db.Notification{
		UserID:     userID,
		FromUserID: fromUserID,
		Type:       db.NotificationTypeMatch,
		Message:    matchMessage,
	})
	if err != nil {
		return false, err
	}
	if created {
		metrics.NotificationsCreatedTotal.WithLabelValues(db.NotificationTypeMatch).Inc()
		s.invalidateUnread(ctx, userID)
	}
	return created, nil
}

// List returns userID's notifications newest first.
// limit <= 0 uses DefaultLimit; anything above MaxLimit is capped.
func (s *Service) List(ctx context.Context, userID string, limit int, pageToken string) (*Page, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	limit = pagination.ClampLimit(limit, DefaultLimit, MaxLimit)

	rows, next, err := s.repo.List(ctx, userID, pageToken, limit)
	if errors.Is(err, pagination.ErrInvalidToken) {
		return nil, svcErr.InvalidArgument("invalid page token")
	}
	if err != nil {
		s.appCtx.Logger.Error("list notifications failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}

	page := &Page{Notifications: rows}
	if page.Notifications == nil {
		page.Notifications = []db.Notification{}
	}
	if next != nil {
		page.NextPageToken = *next
	}
	return page, nil
}

// MarkRead flags a notification as read. Unknown ids and other users'
// notifications are both reported as not found.
func (s *Service) MarkRead(ctx context.Context, id uint64, userID string) error {
	if id == 0 || userID == "" {
		return svcErr.InvalidArgument("notificationId and userId are required")
	}

	wasUnread, err := s.repo.MarkRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound("notification not found")
	}
	if err != nil {
		return svcErr.Map(err)
	}
	if wasUnread {
		s.invalidateUnread(ctx, userID)
	}
	return nil
}

// UnreadCount returns how many unread notifications userID has.
// Cache-first strategy:
//  1. Attempts to read from Redis (notifications:unread:userID).
//  2. On miss, counts in the DB and caches the value with a 1h TTL.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, svcErr.InvalidArgument("userId is required")
	}

	key := s.appCtx.RedisCache.KeyForUnreadCount(userID)

	// try cache first
	if n, ok, err := s.appCtx.RedisCache.GetCount(ctx, key); err == nil && ok {
		return n, nil
	} else if err != nil {
		s.appCtx.Logger.Warn("unread count cache read failed", "key", key, "err", err)
	}

	// fallback: DB
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if err := s.appCtx.RedisCache.SetCount(ctx, key, count); err != nil {
		s.appCtx.Logger.Warn("unread count cache write failed", "key", key, "err", err)
	}
	return count, nil
}

func (s *Service) invalidateUnread(ctx context.Context, userID string) {
	key := s.appCtx.RedisCache.KeyForUnreadCount(userID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("unread count invalidation failed", "key", key, "err", err)
	}
}
