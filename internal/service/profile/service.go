package profile

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/db"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/repository"
)

// Filter narrows the swipe feed. Zero values mean "any".
type Filter struct {
	Gender     string
	MinAge     int
	MaxAge     int
	LookingFor string
	Location   string
}

func (f Filter) needsDetails() bool {
	return f.LookingFor != "" || f.Location != ""
}

// ProfileInput is what a user may set on their own profile.
type ProfileInput struct {
	Username string   `json:"username" validate:"max=64"`
	Name     string   `json:"name" validate:"required,max=128"`
	Age      int      `json:"age" validate:"omitempty,gte=18,lte=120"`
	Gender   string   `json:"gender" validate:"max=32"`
	Bio      string   `json:"bio" validate:"max=2000"`
	Images   []string `json:"images" validate:"max=10,dive,url"`
}

// DetailsInput is the user_details payload.
type DetailsInput struct {
	Height     int    `json:"height" validate:"omitempty,gte=50,lte=300"`
	Weight     int    `json:"weight" validate:"omitempty,gte=20,lte=500"`
	Location   string `json:"location" validate:"max=128"`
	Sexuality  string `json:"sexuality" validate:"max=32"`
	LookingFor string `json:"looking_for" validate:"max=32"`
}

// View is a profile with its details attached when they exist.
type View struct {
	db.Profile
	Details *db.UserDetails `json:"details,omitempty"`
}

// Service is the feed and profile query layer.
type Service struct {
	appCtx       *app.AppContext
	profiles     *repository.ProfileRepository
	interactions *repository.InteractionRepository
	friends      *repository.FriendRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		profiles:     repository.NewProfileRepository(appCtx.DB),
		interactions: repository.NewInteractionRepository(appCtx.DB),
		friends:      repository.NewFriendRepository(appCtx.DB),
	}
}

// Feed returns the profiles currentUserID has not swiped on yet.
//
// Behavior:
//   - Excludes the caller and everyone in their match or dismatch set.
//   - Applies gender/age filters on the profile and looking_for/location
//     filters on user_details; profiles without details fail those filters.
//   - The set difference happens in memory.
func (s *Service) Feed(ctx context.Context, currentUserID string, f Filter) ([]db.Profile, error) {
	if currentUserID == "" {
		return nil, svcErr.InvalidArgument("current_user_id is required")
	}

	excluded, err := s.interactions.ExcludedIDs(ctx, currentUserID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	all, err := s.profiles.List(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	var details map[string]db.UserDetails
	if f.needsDetails() {
		if details, err = s.profiles.DetailsByUser(ctx); err != nil {
			return nil, svcErr.Map(err)
		}
	}

	out := make([]db.Profile, 0, len(all))
	for _, p := range all {
		if p.UserID == currentUserID {
			continue
		}
		if _, skip := excluded[p.UserID]; skip {
			continue
		}
		if !matchesProfile(p, f) {
			continue
		}
		if f.needsDetails() && !matchesDetails(details[p.UserID], f) {
			continue
		}
		out = append(out, p)
	}

	s.appCtx.Logger.Debug("feed built", "user", currentUserID, "candidates", len(all), "returned", len(out))
	return out, nil
}

func matchesProfile(p db.Profile, f Filter) bool {
	if f.Gender != "" && !strings.EqualFold(p.Gender, f.Gender) {
		return false
	}
	if f.MinAge > 0 && p.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && p.Age > f.MaxAge {
		return false
	}
	return true
}

func matchesDetails(d db.UserDetails, f Filter) bool {
	if f.LookingFor != "" && !strings.EqualFold(d.LookingFor, f.LookingFor) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(d.Location), strings.ToLower(f.Location)) {
		return false
	}
	return true
}

// SaveProfile creates or updates userID's profile and returns the stored row.
func (s *Service) SaveProfile(ctx context.Context, userID string, in ProfileInput) (*db.Profile, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	images := in.Images
	if images == nil {
		images = []string{}
	}

	p := &db.Profile{
		UserID:   userID,
		Username: in.Username,
		Name:     in.Name,
		Age:      in.Age,
		Gender:   in.Gender,
		Bio:      in.Bio,
		Images:   images,
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		s.appCtx.Logger.Error("save profile failed", "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return s.profiles.Get(ctx, userID)
}

// GetProfile returns userID's profile with details. Missing profile → 404.
func (s *Service) GetProfile(ctx context.Context, userID string) (*View, error) {
	p, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("profile not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	view := &View{Profile: *p}
	d, err := s.profiles.GetDetails(ctx, userID)
	switch {
	case err == nil:
		view.Details = d
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, svcErr.Map(err)
	}
	return view, nil
}

// SaveDetails upserts userID's details as a unit.
func (s *Service) SaveDetails(ctx context.Context, userID string, in DetailsInput) (*db.UserDetails, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	d := &db.UserDetails{
		UserID:     userID,
		HeightCM:   in.Height,
		WeightKG:   in.Weight,
		Location:   in.Location,
		Sexuality:  in.Sexuality,
		LookingFor: in.LookingFor,
	}
	if err := s.profiles.SaveDetails(ctx, d); err != nil {
		return nil, svcErr.Map(err)
	}
	return d, nil
}

// GetDetails returns userID's details. Missing → 404.
func (s *Service) GetDetails(ctx context.Context, userID string) (*db.UserDetails, error) {
	d, err := s.profiles.GetDetails(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("details not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return d, nil
}

// Friends returns the profiles of userID's friends.
func (s *Service) Friends(ctx context.Context, userID string) ([]db.Profile, error) {
	if userID == "" {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	ids, err := s.friends.Friends(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out, err := s.profiles.ListByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return out, nil
}
