package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/glidefade/internal/db"
)

// ProfileRepository provides data access for profiles and user_details.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Save inserts or updates a profile. An existing premium flag is never
// overwritten by a save.
func (r *ProfileRepository) Save(ctx context.Context, p *db.Profile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "name", "age", "gender", "bio", "images", "updated_at"}),
		}).
		Create(p).Error
}

// SetPremium flips the server-managed premium flag.
func (r *ProfileRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	res := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("user_id = ?", userID).
		Update("premium", premium)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Get loads a profile. Missing → gorm.ErrRecordNotFound.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every profile ordered by creation time.
func (r *ProfileRepository) List(ctx context.Context) ([]db.Profile, error) {
	var out []db.Profile
	if err := r.db.WithContext(ctx).Order("created_at ASC, user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByIDs returns the profiles for ids; unknown ids are skipped.
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) ([]db.Profile, error) {
	if len(ids) == 0 {
		return []db.Profile{}, nil
	}
	var out []db.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Order("user_id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SaveDetails upserts the whole details row.
func (r *ProfileRepository) SaveDetails(ctx context.Context, d *db.UserDetails) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"height_cm", "weight_kg", "location", "sexuality", "looking_for"}),
		}).
		Create(d).Error
}

// GetDetails loads a details row. Missing → gorm.ErrRecordNotFound.
func (r *ProfileRepository) GetDetails(ctx context.Context, userID string) (*db.UserDetails, error) {
	var d db.UserDetails
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// DetailsByUser loads every details row keyed by user id.
func (r *ProfileRepository) DetailsByUser(ctx context.Context) (map[string]db.UserDetails, error) {
	var rows []db.UserDetails
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]db.UserDetails, len(rows))
	for _, d := range rows {
		out[d.UserID] = d
	}
	return out, nil
}
