package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/repository"
	"github.com/oggyb/glidefade/internal/testutil"
	"github.com/oggyb/glidefade/internal/utils/pagination"
)

func newMatchNotification(userID, fromUserID string) *db.Notification {
	return &db.Notification{
		UserID:     userID,
		FromUserID: fromUserID,
		Type:       db.NotificationTypeMatch,
		Message:    "You have a new match!",
	}
}

func TestNotificationCreateDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewNotificationRepository(testutil.NewDB(t))

	created, err := repo.Create(ctx, newMatchNotification("uid-A", "uid-B"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, newMatchNotification("uid-A", "uid-B"))
	require.NoError(t, err)
	assert.False(t, created)

	// other direction is a separate notification
	created, err = repo.Create(ctx, newMatchNotification("uid-B", "uid-A"))
	require.NoError(t, err)
	assert.True(t, created)

	exists, err := repo.Exists(ctx, "uid-A", "uid-B")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "uid-A", "uid-C")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNotificationListPagination(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewNotificationRepository(gdb)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		n := newMatchNotification("uid-A", fmt.Sprintf("from-%d", i))
		n.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, gdb.Create(n).Error)
	}
	_, _ = repo.Create(ctx, newMatchNotification("uid-Z", "from-0"))

	page1, next, err := repo.List(ctx, "uid-A", "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, next)
	assert.Equal(t, "from-4", page1[0].FromUserID)
	assert.Equal(t, "from-3", page1[1].FromUserID)

	page2, next, err := repo.List(ctx, "uid-A", *next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, next)
	assert.Equal(t, "from-2", page2[0].FromUserID)

	page3, next, err := repo.List(ctx, "uid-A", *next, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Nil(t, next)
	assert.Equal(t, "from-0", page3[0].FromUserID)
}

func TestNotificationListPagesClockStampedRows(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:notification_clock_pages?mode=memory&cache=shared"
	gdb, err := db.NewDB(cfg)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewNotificationRepository(gdb)
	const total = 50
	for i := 0; i < total; i++ {
		created, err := repo.Create(ctx, newMatchNotification("uid-A", fmt.Sprintf("from-%02d", i)))
		require.NoError(t, err)
		require.True(t, created)
	}

	seen := make(map[uint64]int, total)
	token := ""
	for pages := 0; pages <= total; pages++ {
		page, next, err := repo.List(ctx, "uid-A", token, 1)
		require.NoError(t, err)
		for _, n := range page {
			assert.Zero(t, n.CreatedAt.Nanosecond()%int(time.Millisecond))
			seen[n.ID]++
		}
		if next == nil {
			break
		}
		token = *next
	}

	assert.Len(t, seen, total)
	for id, hits := range seen {
		assert.Equal(t, 1, hits, "notification %d", id)
	}
}

func TestNotificationListRejectsBadToken(t *testing.T) {
	repo := repository.NewNotificationRepository(testutil.NewDB(t))

	_, _, err := repo.List(context.Background(), "uid-A", "!!!", 10)
	assert.ErrorIs(t, err, pagination.ErrInvalidToken)
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	repo := repository.NewNotificationRepository(gdb)

	n := newMatchNotification("uid-A", "uid-B")
	require.NoError(t, gdb.Create(n).Error)

	// someone else's notification looks missing
	_, err := repo.MarkRead(ctx, n.ID, "uid-B")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.MarkRead(ctx, 9999, "uid-A")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	count, err := repo.CountUnread(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	wasUnread, err := repo.MarkRead(ctx, n.ID, "uid-A")
	require.NoError(t, err)
	assert.True(t, wasUnread)

	// second mark is a no-op
	wasUnread, err = repo.MarkRead(ctx, n.ID, "uid-A")
	require.NoError(t, err)
	assert.False(t, wasUnread)

	count, err = repo.CountUnread(ctx, "uid-A")
	require.NoError(t, err)
	assert.Zero(t, count)
}
