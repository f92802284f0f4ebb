package db

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var demoLocations = []string{"London", "Berlin", "Lisbon", "Istanbul", "Dublin"}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears every table the service owns.
//  2. Creates 20 profiles (10 male, 10 female) with details.
//  3. Each user likes or passes on ~6 users of the other gender (~70% likes);
//     every 3rd like is made mutual so reconciliation has work to do.
//  4. Posts a handful of demo videos.
//
// Friendships and notifications are left to the reconciler.
func SeedTestData(db *gorm.DB, log *slog.Logger) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(db); err != nil {
		return err
	}
	log.Info("cleared existing data")

	// --- profiles ---
	ids := make([]string, 20)
	genders := make(map[string]string, 20)
	for i := range ids {
		id := fmt.Sprintf("demo-user-%02d", i+1)
		ids[i] = id

		gender := "male"
		lookingFor := "female"
		if i >= 10 {
			gender, lookingFor = "female", "male"
		}
		genders[id] = gender

		p := Profile{
			UserID:   id,
			Username: fmt.Sprintf("user%d", i+1),
			Name:     fmt.Sprintf("Demo User %d", i+1),
			Age:      18 + r.Intn(30),
			Gender:   gender,
			Bio:      "Just here for the vibes.",
			Images:   datatypes.JSONSlice[string]{fmt.Sprintf("https://picsum.photos/seed/%s/400/600", id)},
			Premium:  i%5 == 0,
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		d := UserDetails{
			UserID:     id,
			HeightCM:   155 + r.Intn(40),
			WeightKG:   50 + r.Intn(40),
			Location:   demoLocations[r.Intn(len(demoLocations))],
			Sexuality:  "straight",
			LookingFor: lookingFor,
		}
		if err := db.Create(&d).Error; err != nil {
			return fmt.Errorf("failed to seed details: %w", err)
		}
	}
	log.Info("seeded profiles", "count", len(ids))

	// --- swipes ---
	matches := make(map[string]datatypes.JSONSlice[string], len(ids))
	dismatches := make(map[string]datatypes.JSONSlice[string], len(ids))
	counter := 0
	for _, actor := range ids {
		for _, j := range r.Perm(len(ids))[:8] {
			target := ids[j]
			if target == actor || genders[target] == genders[actor] {
				continue
			}

			// like probability 70%, mutual every 3rd
			liked := r.Intn(100) < 70 || counter%3 == 0
			if counter%3 == 0 {
				matches[target], _ = AddToSet(matches[target], actor)
			}
			if liked {
				matches[actor], _ = AddToSet(matches[actor], target)
			} else {
				dismatches[actor], _ = AddToSet(dismatches[actor], target)
			}
			counter++
		}
	}
	for owner, set := range matches {
		if err := db.Create(&MatchSet{UserID: owner, Matches: set}).Error; err != nil {
			return fmt.Errorf("failed to seed matches: %w", err)
		}
	}
	for owner, set := range dismatches {
		if err := db.Create(&DismatchSet{UserID: owner, Dismatches: set}).Error; err != nil {
			return fmt.Errorf("failed to seed dismatches: %w", err)
		}
	}
	log.Info("seeded swipes", "count", counter)

	// --- videos ---
	for i := 0; i < 5; i++ {
		v := Video{
			ID:          uuid.NewString(),
			UserID:      ids[r.Intn(len(ids))],
			VideoURL:    fmt.Sprintf("https://cdn.example.com/demo/clip-%d.mp4", i+1),
			Description: fmt.Sprintf("Demo clip #%d", i+1),
			LikedBy:     datatypes.JSONSlice[string]{},
			SharedBy:    datatypes.JSONSlice[string]{},
			Comments:    datatypes.JSONSlice[Comment]{},
		}
		if err := db.Create(&v).Error; err != nil {
			return fmt.Errorf("failed to seed video: %w", err)
		}
	}
	log.Info("seeded videos", "count", 5)

	return nil
}

// SeedMinimalTestData loads a tiny fixture: user1 and user2 like each
// other, user3 likes user1 who passed on user3.
func SeedMinimalTestData(db *gorm.DB) error {
	if err := clearAll(db); err != nil {
		return err
	}

	profiles := []Profile{
		{UserID: "user1", Username: "user1", Name: "User One", Age: 30, Gender: "male", Images: datatypes.JSONSlice[string]{}},
		{UserID: "user2", Username: "user2", Name: "User Two", Age: 28, Gender: "female", Images: datatypes.JSONSlice[string]{}},
		{UserID: "user3", Username: "user3", Name: "User Three", Age: 26, Gender: "female", Images: datatypes.JSONSlice[string]{}},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	if err := db.Create(&[]MatchSet{
		{UserID: "user1", Matches: datatypes.JSONSlice[string]{"user2"}},
		{UserID: "user2", Matches: datatypes.JSONSlice[string]{"user1"}},
		{UserID: "user3", Matches: datatypes.JSONSlice[string]{"user1"}},
	}).Error; err != nil {
		return err
	}
	return db.Create(&DismatchSet{UserID: "user1", Dismatches: datatypes.JSONSlice[string]{"user3"}}).Error
}

func clearAll(db *gorm.DB) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	models := Models()
	// reverse migration order
	for i := len(models) - 1; i >= 0; i-- {
		if err := all.Delete(models[i]).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", models[i], err)
		}
	}
	return nil
}
