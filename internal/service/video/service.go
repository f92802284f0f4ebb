package video

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/db"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/utils/pagination"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// CreateInput is a new video post.
type CreateInput struct {
	VideoURL    string `json:"video_url" validate:"required,url"`
	Description string `json:"description" validate:"max=2000"`
}

// CommentInput is a new comment.
type CommentInput struct {
	Name string `json:"name" validate:"max=128"`
	Text string `json:"text" validate:"required,max=1000"`
}

// Service is the short-video feed.
type Service struct {
	appCtx *app.AppContext
	repo   *repository.VideoRepository
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		repo:   repository.NewVideoRepository(appCtx.DB),
	}
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*db.Video, error) {
	if userID == "" || strings.TrimSpace(in.VideoURL) == "" {
		return nil, svcErr.InvalidArgument("video_url is required")
	}
	v := &db.Video{
		ID:          uuid.NewString(),
		UserID:      userID,
		VideoURL:    in.VideoURL,
		Description: in.Description,
		LikedBy:     []string{},
		SharedBy:    []string{},
		Comments:    []db.Comment{},
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, svcErr.Map(err)
	}
	return v, nil
}

// List returns the newest videos.
func (s *Service) List(ctx context.Context, limit int) ([]db.Video, error) {
	videos, err := s.repo.List(ctx, pagination.ClampLimit(limit, DefaultLimit, MaxLimit))
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if videos == nil {
		videos = []db.Video{}
	}
	return videos, nil
}

// Get returns one video.
func (s *Service) Get(ctx context.Context, id string) (*db.Video, error) {
	v, err := s.repo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("video not found")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return v, nil
}

// ToggleLike likes the video for userID, or takes the like back if it
// was already there.
func (s *Service) ToggleLike(ctx context.Context, videoID, userID string) (*db.Video, error) {
	return s.mutate(ctx, videoID, userID, func(v *db.Video) bool {
		if set, removed := db.RemoveFromSet(v.LikedBy, userID); removed {
			v.LikedBy = set
			v.Likes--
			return true
		}
		v.LikedBy, _ = db.AddToSet(v.LikedBy, userID)
		v.Likes++
		return true
	})
}

// Share counts a share by userID once; repeats change nothing.
func (s *Service) Share(ctx context.Context, videoID, userID string) (*db.Video, error) {
	return s.mutate(ctx, videoID, userID, func(v *db.Video) bool {
		set, added := db.AddToSet(v.SharedBy, userID)
		if !added {
			return false
		}
		v.SharedBy = set
		v.Shares++
		return true
	})
}

// Comment appends a comment by userID.
func (s *Service) Comment(ctx context.Context, videoID, userID string, in CommentInput) (*db.Video, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, svcErr.InvalidArgument("text is required")
	}
	return s.mutate(ctx, videoID, userID, func(v *db.Video) bool {
		v.Comments = append(v.Comments, db.Comment{User: userID, Name: in.Name, Text: in.Text})
		return true
	})
}

func (s *Service) mutate(ctx context.Context, videoID, userID string, fn func(v *db.Video) bool) (*db.Video, error) {
	if videoID == "" || userID == "" {
		return nil, svcErr.InvalidArgument("video id and user are required")
	}
	v, err := s.repo.Mutate(ctx, videoID, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, svcErr.NotFound("video not found")
	}
	if err != nil {
		s.appCtx.Logger.Error("video update failed", "video", videoID, "user", userID, "err", err)
		return nil, svcErr.Map(err)
	}
	return v, nil
}
