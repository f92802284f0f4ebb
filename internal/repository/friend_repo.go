package repository

import (
	"context"
	"slices"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/db"
)

// FriendRepository manages the symmetric friends sets.
type FriendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new repository bound to the given DB connection.
func NewFriendRepository(database *gorm.DB) *FriendRepository {
	return &FriendRepository{db: database}
}

// AddPair makes a and b friends of each other in one transaction.
//
// Behavior:
//   - Rows are locked in id order so two writers on the same pair cannot deadlock.
//   - Containment is re-checked under the lock; a pair that already exists
//     is reported as created=false.
//   - A half-written pair (only one side present) is repaired.
func (r *FriendRepository) AddPair(ctx context.Context, a, b string) (bool, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		addedFirst, err := addToSet[db.FriendSet](tx, first, second)
		if err != nil {
			return err
		}
		addedSecond, err := addToSet[db.FriendSet](tx, second, first)
		if err != nil {
			return err
		}
		created = addedFirst || addedSecond
		return nil
	})
	return created, err
}

// Friends returns userID's friend ids.
func (r *FriendRepository) Friends(ctx context.Context, userID string) ([]string, error) {
	return loadSet[db.FriendSet](r.db.WithContext(ctx), userID)
}

// AreFriends checks whether b is in a's friends set.
func (r *FriendRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	friends, err := r.Friends(ctx, a)
	if err != nil {
		return false, err
	}
	return slices.Contains(friends, b), nil
}

// All loads every friends set keyed by owner.
func (r *FriendRepository) All(ctx context.Context) (map[string][]string, error) {
	var rows []db.FriendSet
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Friends
	}
	return out, nil
}
