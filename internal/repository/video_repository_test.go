package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/testutil"
)

func TestVideoListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewVideoRepository(testutil.NewDB(t))
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"v1", "v2", "v3"} {
		require.NoError(t, repo.Create(ctx, &db.Video{ID: id, UserID: "uid-A", VideoURL: "https://cdn/" + id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	videos, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, "v3", videos[0].ID)
	assert.Equal(t, "v2", videos[1].ID)
}

func TestVideoMutate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewVideoRepository(testutil.NewDB(t))
	require.NoError(t, repo.Create(ctx, &db.Video{ID: "v1", UserID: "uid-A", VideoURL: "https://cdn/v1"}))

	v, err := repo.Mutate(ctx, "v1", func(v *db.Video) bool {
		v.Likes++
		v.LikedBy = append(v.LikedBy, "uid-B")
		v.Comments = append(v.Comments, db.Comment{User: "uid-B", Name: "Bea", Text: "nice"})
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Likes)

	got, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, []string{"uid-B"}, []string(got.LikedBy))
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Text)

	// fn returning false writes nothing
	_, err = repo.Mutate(ctx, "v1", func(v *db.Video) bool {
		v.Likes = 100
		return false
	})
	require.NoError(t, err)
	got, _ = repo.Get(ctx, "v1")
	assert.Equal(t, 1, got.Likes)

	_, err = repo.Mutate(ctx, "missing", func(*db.Video) bool { return true })
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
