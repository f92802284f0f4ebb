package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/db"
)

// InteractionRepository stores swipe decisions as per-user sets:
// match.matches for likes, dismatch.dismatches for passes.
type InteractionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new repository bound to the given DB connection.
func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

// AddMatch records that userID liked targetID.
//
// Behavior:
//   - Missing match row → created with [targetID].
//   - targetID already present → no write.
//   - Never removes anything.
//
// The read-modify-write happens under a row lock so concurrent appends
// for the same user cannot drop each other's ids.
func (r *InteractionRepository) AddMatch(ctx context.Context, userID, targetID string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = addToSet[db.MatchSet](tx, userID, targetID)
		return err
	})
	return added, err
}

// AddDismatch records that userID passed on targetID. Same rules as AddMatch.
func (r *InteractionRepository) AddDismatch(ctx context.Context, userID, targetID string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		added, err = addToSet[db.DismatchSet](tx, userID, targetID)
		return err
	})
	return added, err
}

// Matches returns every id userID liked.
func (r *InteractionRepository) Matches(ctx context.Context, userID string) ([]string, error) {
	return loadSet[db.MatchSet](r.db.WithContext(ctx), userID)
}

// Dismatches returns every id userID passed on.
func (r *InteractionRepository) Dismatches(ctx context.Context, userID string) ([]string, error) {
	return loadSet[db.DismatchSet](r.db.WithContext(ctx), userID)
}

// AllMatchSets loads the whole match table. Reconciliation walks it in memory.
func (r *InteractionRepository) AllMatchSets(ctx context.Context) ([]db.MatchSet, error) {
	var rows []db.MatchSet
	if err := r.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ExcludedIDs is the union of userID's match and dismatch sets.
func (r *InteractionRepository) ExcludedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	matches, err := r.Matches(ctx, userID)
	if err != nil {
		return nil, err
	}
	dismatches, err := r.Dismatches(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]struct{}, len(matches)+len(dismatches))
	for _, id := range matches {
		out[id] = struct{}{}
	}
	for _, id := range dismatches {
		out[id] = struct{}{}
	}
	return out, nil
}

// HasMatched checks whether userID liked targetID.
func (r *InteractionRepository) HasMatched(ctx context.Context, userID, targetID string) (bool, error) {
	matches, err := r.Matches(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, id := range matches {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}
