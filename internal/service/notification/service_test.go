package notification_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/service/notification"
	"github.com/oggyb/glidefade/internal/testutil"
)

func setupService(t *testing.T) (*notification.Service, *miniredis.Miniredis) {
	t.Helper()
	appCtx, mr := testutil.NewAppContext(t)
	return notification.NewService(appCtx), mr
}

func TestNotifyMatchOncePerDirection(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	created, err := svc.NotifyMatch(ctx, "uid-A", "uid-B")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.NotifyMatch(ctx, "uid-A", "uid-B")
	require.NoError(t, err)
	assert.False(t, created)

	page, err := svc.List(ctx, "uid-A", 0, "")
	require.NoError(t, err)
	require.Len(t, page.Notifications, 1)
	assert.Equal(t, "match", page.Notifications[0].Type)
	assert.Equal(t, "uid-B", page.Notifications[0].FromUserID)
	assert.Empty(t, page.NextPageToken)
}

func TestListPaginatesAndCapsLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	for _, from := range []string{"u1", "u2", "u3"} {
		_, err := svc.NotifyMatch(ctx, "uid-A", from)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, "uid-A", 2, "")
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	require.NotEmpty(t, page.NextPageToken)

	page, err = svc.List(ctx, "uid-A", 2, page.NextPageToken)
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 1)

	page, err = svc.List(ctx, "uid-A", 1000, "")
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 3)

	_, err = svc.List(ctx, "uid-A", 10, "garbage!")
	status, _ := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMarkReadNotFoundForOtherUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.NotifyMatch(ctx, "uid-A", "uid-B")
	require.NoError(t, err)
	page, err := svc.List(ctx, "uid-A", 0, "")
	require.NoError(t, err)
	id := page.Notifications[0].ID

	err = svc.MarkRead(ctx, id, "uid-B")
	status, msg := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "notification not found", msg)

	require.NoError(t, svc.MarkRead(ctx, id, "uid-A"))
}

func TestUnreadCountCacheFirst(t *testing.T) {
	ctx := context.Background()
	svc, mr := setupService(t)
	key := "notifications:unread:uid-A"

	_, _ = svc.NotifyMatch(ctx, "uid-A", "uid-B")
	_, _ = svc.NotifyMatch(ctx, "uid-A", "uid-C")

	count, err := svc.UnreadCount(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// value is cached now
	cached, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "2", cached)

	// cache wins over the DB while it is warm
	require.NoError(t, mr.Set(key, "7"))
	count, err = svc.UnreadCount(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	// marking read invalidates
	page, _ := svc.List(ctx, "uid-A", 0, "")
	require.NoError(t, svc.MarkRead(ctx, page.Notifications[0].ID, "uid-A"))
	assert.False(t, mr.Exists(key))

	count, err = svc.UnreadCount(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
