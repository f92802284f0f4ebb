package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/glidefade/internal/db"
)

// MessageRepository provides data access for the messages table.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create inserts a single message row.
func (r *MessageRepository) Create(ctx context.Context, m *db.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Conversation returns the messages exchanged between callerID and otherID,
// oldest first. Unsent scheduled messages are only visible to their sender.
func (r *MessageRepository) Conversation(ctx context.Context, callerID, otherID string) ([]db.Message, error) {
	var msgs []db.Message
	err := r.db.WithContext(ctx).
		Where(
			"((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			callerID, otherID, otherID, callerID,
		).
		Where("(sent = ? OR sender_id = ?)", true, callerID).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "timestamp"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// GetByID loads a message. Missing → gorm.ErrRecordNotFound.
func (r *MessageRepository) GetByID(ctx context.Context, id string) (*db.Message, error) {
	var m db.Message
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteForParticipant removes message id if userID sent or received it.
// Anything else is reported as gorm.ErrRecordNotFound.
func (r *MessageRepository) DeleteForParticipant(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND (sender_id = ? OR receiver_id = ?)", id, userID, userID).
		Delete(&db.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PromoteDue marks due scheduled messages as sent and moves their
// timestamp to the scheduled time. An empty senderID promotes for everyone.
//
// Behavior:
//   - Only rows with sent = false AND scheduled_at <= now are touched.
//   - Single bulk UPDATE; returns the number of promoted rows.
func (r *MessageRepository) PromoteDue(ctx context.Context, senderID string, now time.Time) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Message{}).
		Where("sent = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", false, now.UTC())
	if senderID != "" {
		query = query.Where("sender_id = ?", senderID)
	}

	res := query.Updates(map[string]any{
		"sent":      true,
		"timestamp": gorm.Expr("scheduled_at"),
	})
	return res.RowsAffected, res.Error
}
