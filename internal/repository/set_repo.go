package repository

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/glidefade/internal/db"
)

// forUpdate adds SELECT ... FOR UPDATE where the dialect has it.
// SQLite serializes writers on its own.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// setRow is a pointer to one of the per-user set models.
type setRow[T any] interface {
	*T
	db.IDSet
}

// addToSet makes sure id is in userID's set, creating the row when missing.
// Must run inside a transaction. Reports whether anything was written.
//
// Two writers racing on a missing row both try the insert; the loser sees
// RowsAffected == 0 and retries against the row the winner created.
func addToSet[T any, P setRow[T]](tx *gorm.DB, userID, id string) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		var row T
		p := P(&row)

		err := forUpdate(tx).Where("user_id = ?", userID).Take(p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			p.SetOwner(userID)
			*p.IDs() = datatypes.JSONSlice[string]{id}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(p)
			if res.Error != nil {
				return false, res.Error
			}
			if res.RowsAffected == 1 {
				return true, nil
			}
			continue

		case err != nil:
			return false, err
		}

		set, changed := db.AddToSet(*p.IDs(), id)
		if !changed {
			return false, nil
		}
		if err := tx.Model(p).Update(p.SetColumn(), set).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	return false, fmt.Errorf("set row for %s kept disappearing", userID)
}

// loadSet returns userID's set; a missing row is an empty set.
func loadSet[T any, P setRow[T]](tx *gorm.DB, userID string) ([]string, error) {
	var row T
	p := P(&row)
	err := tx.Where("user_id = ?", userID).Take(p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []string(*p.IDs()), nil
}
