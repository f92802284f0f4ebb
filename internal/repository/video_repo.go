package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/db"
)

// VideoRepository provides data access for the videos table.
type VideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new repository bound to the given DB connection.
func NewVideoRepository(database *gorm.DB) *VideoRepository {
	return &VideoRepository{db: database}
}

func (r *VideoRepository) Create(ctx context.Context, v *db.Video) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// List returns up to limit videos, newest first.
func (r *VideoRepository) List(ctx context.Context, limit int) ([]db.Video, error) {
	var out []db.Video
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads a video. Missing → gorm.ErrRecordNotFound.
func (r *VideoRepository) Get(ctx context.Context, id string) (*db.Video, error) {
	var v db.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// Mutate loads video id under a row lock, applies fn and saves the
// counters and sets fn touched. fn returning false skips the write.
func (r *VideoRepository) Mutate(ctx context.Context, id string, fn func(v *db.Video) bool) (*db.Video, error) {
	var v db.Video
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ?", id).Take(&v).Error; err != nil {
			return err
		}
		if !fn(&v) {
			return nil
		}
		return tx.Model(&v).
			Select("likes", "liked_by", "shares", "shared_by", "comments").
			Updates(&v).Error
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}
