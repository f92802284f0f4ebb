package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/utils/pagination"
)

// NotificationRepository provides data access for the notifications table.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new repository bound to the given DB connection.
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

// Exists checks whether userID already has a notification from fromUserID.
func (r *NotificationRepository) Exists(ctx context.Context, userID, fromUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("user_id = ? AND from_user_id = ?", userID, fromUserID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts n unless a row for (user_id, from_user_id) exists.
// Reports whether a row was written.
func (r *NotificationRepository) Create(ctx context.Context, n *db.Notification) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "from_user_id"}},
			DoNothing: true,
		}).
		Create(n)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns userID's notifications newest first.
//
// Behavior:
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via pageToken.
//   - Returns nil nextToken on the last page.
func (r *NotificationRepository) List(
	ctx context.Context,
	userID string,
	pageToken string,
	limit int,
) ([]db.Notification, *string, error) {
	cursor, err := pagination.Decode(pageToken)
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	// apply cursor
	if !cursor.IsZero() {
		ts := time.UnixMilli(cursor.CreatedUnix).UTC()
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var rows []db.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(rows) > limit {
		last := rows[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			ID:          last.ID,
			CreatedUnix: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		rows = rows[:limit]
	}

	return rows, nextToken, nil
}

// MarkRead flags notification id as read if it belongs to userID.
// Unknown ids and foreign notifications both yield gorm.ErrRecordNotFound.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uint64, userID string) (wasUnread bool, err error) {
	var n db.Notification
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ? AND user_id = ?", id, userID).Take(&n).Error; err != nil {
			return err
		}
		if n.IsRead {
			return nil
		}
		wasUnread = true
		return tx.Model(&n).Update("is_read", true).Error
	})
	return wasUnread, err
}

// CountUnread returns how many unread notifications userID has.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
