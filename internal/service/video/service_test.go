package video_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/service/video"
	"github.com/oggyb/glidefade/internal/testutil"
)

func setupService(t *testing.T) *video.Service {
	t.Helper()
	appCtx, _ := testutil.NewAppContext(t)
	return video.NewService(appCtx)
}

func TestToggleLikeTwiceRestores(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, "uid-A", video.CreateInput{VideoURL: "https://cdn/v.mp4", Description: "sunset"})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, v.ID, "uid-B")
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, []string{"uid-B"}, []string(liked.LikedBy))

	unliked, err := svc.ToggleLike(ctx, v.ID, "uid-B")
	require.NoError(t, err)
	assert.Equal(t, 0, unliked.Likes)
	assert.Empty(t, unliked.LikedBy)
}

func TestShareDeduplicates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, "uid-A", video.CreateInput{VideoURL: "https://cdn/v.mp4"})
	require.NoError(t, err)

	_, err = svc.Share(ctx, v.ID, "uid-B")
	require.NoError(t, err)
	shared, err := svc.Share(ctx, v.ID, "uid-B")
	require.NoError(t, err)
	assert.Equal(t, 1, shared.Shares)

	shared, err = svc.Share(ctx, v.ID, "uid-C")
	require.NoError(t, err)
	assert.Equal(t, 2, shared.Shares)
}

func TestCommentAndList(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, "uid-A", video.CreateInput{VideoURL: "https://cdn/v.mp4"})
	require.NoError(t, err)

	got, err := svc.Comment(ctx, v.ID, "uid-B", video.CommentInput{Name: "Bea", Text: "wow"})
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "uid-B", got.Comments[0].User)

	_, err = svc.Comment(ctx, v.ID, "uid-B", video.CommentInput{Text: "  "})
	status, _ := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)

	videos, err := svc.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Len(t, videos[0].Comments, 1)
}

func TestMissingVideo(t *testing.T) {
	svc := setupService(t)

	_, err := svc.ToggleLike(context.Background(), "nope", "uid-B")
	status, msg := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "video not found", msg)
}

func TestGetVideo(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "uid-A", video.CreateInput{VideoURL: "https://cdn.test/v.mp4", Description: "hello"})
	require.NoError(t, err)

	v, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "uid-A", v.UserID)
	assert.Equal(t, "hello", v.Description)

	_, err = svc.Get(ctx, "nope")
	status, msg := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "video not found", msg)
}
