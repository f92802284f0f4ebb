package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/testutil"
)

func TestProfileSaveUpsertKeepsPremium(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(testutil.NewDB(t))

	p := &db.Profile{UserID: "uid-A", Username: "alice", Name: "Alice", Age: 27, Gender: "female", Images: []string{"a.jpg"}}
	require.NoError(t, repo.Save(ctx, p))
	require.NoError(t, repo.SetPremium(ctx, "uid-A", true))

	// later save from the client never carries premium
	update := &db.Profile{UserID: "uid-A", Username: "alice", Name: "Alice B", Age: 28, Gender: "female", Images: []string{"b.jpg", "a.jpg"}}
	require.NoError(t, repo.Save(ctx, update))

	got, err := repo.Get(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, 28, got.Age)
	assert.Equal(t, []string{"b.jpg", "a.jpg"}, []string(got.Images))
	assert.True(t, got.Premium)
}

func TestProfileGetMissing(t *testing.T) {
	repo := repository.NewProfileRepository(testutil.NewDB(t))

	_, err := repo.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = repo.SetPremium(context.Background(), "ghost", true)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProfileListByIDs(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(testutil.NewDB(t))

	for _, id := range []string{"uid-A", "uid-B", "uid-C"} {
		require.NoError(t, repo.Save(ctx, &db.Profile{UserID: id, Name: id}))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := repo.ListByIDs(ctx, []string{"uid-C", "uid-A", "ghost"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "uid-A", some[0].UserID)
	assert.Equal(t, "uid-C", some[1].UserID)

	none, err := repo.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDetailsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(testutil.NewDB(t))

	require.NoError(t, repo.SaveDetails(ctx, &db.UserDetails{UserID: "uid-A", HeightCM: 170, Location: "Lisbon", LookingFor: "friends"}))
	require.NoError(t, repo.SaveDetails(ctx, &db.UserDetails{UserID: "uid-A", HeightCM: 171, Location: "Porto", LookingFor: "dating"}))

	d, err := repo.GetDetails(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, 171, d.HeightCM)
	assert.Equal(t, "Porto", d.Location)
	assert.Equal(t, "dating", d.LookingFor)

	byUser, err := repo.DetailsByUser(ctx)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	_, err = repo.GetDetails(ctx, "uid-B")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
