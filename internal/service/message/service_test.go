package message

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/glidefade/internal/db"
	svcErr "github.com/oggyb/glidefade/internal/errors"
	"github.com/oggyb/glidefade/internal/testutil"
)

var t0 = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T) *Service {
	t.Helper()
	appCtx, _ := testutil.NewAppContext(t)
	svc := NewService(appCtx)
	svc.now = func() time.Time { return t0 }
	return svc
}

func TestSendNormalDefaultsType(t *testing.T) {
	svc := setupService(t)

	msgs, err := svc.Send(context.Background(), "uid-A", SendInput{ReceiverID: "uid-B", Content: "hey"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, db.MessageNormal, msgs[0].Type)
	assert.True(t, msgs[0].Sent)
	assert.True(t, msgs[0].Timestamp.Equal(t0))
	assert.NotEmpty(t, msgs[0].ID)
}

func TestSendValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	cases := []struct {
		sender string
		in     SendInput
	}{
		{"uid-A", SendInput{ReceiverID: "", Content: "x"}},
		{"uid-A", SendInput{ReceiverID: "uid-B", Content: ""}},
		{"uid-A", SendInput{ReceiverID: "uid-B", Content: "x", Type: "carrier-pigeon"}},
		{"uid-A", SendInput{ReceiverID: "uid-B", Content: "x", Type: db.MessageScheduled}},
		{"", SendInput{ReceiverID: "uid-B", Content: "x"}},
	}
	for _, tc := range cases {
		_, err := svc.Send(ctx, tc.sender, tc.in)
		status, _ := svcErr.StatusOf(err)
		assert.Equal(t, http.StatusBadRequest, status, "input %+v", tc.in)
	}
}

func TestSendBombFansOut(t *testing.T) {
	svc := setupService(t)

	msgs, err := svc.Send(context.Background(), "uid-A", SendInput{ReceiverID: "uid-B", Content: "boom", Type: db.MessageBomb})
	require.NoError(t, err)
	require.Len(t, msgs, BombBurstSize)

	ids := map[string]struct{}{}
	for _, m := range msgs {
		ids[m.ID] = struct{}{}
		assert.Equal(t, db.MessageBomb, m.Type)
	}
	assert.Len(t, ids, BombBurstSize)
}

func TestScheduledLifecycle(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	at := t0.Add(10 * time.Minute)

	msgs, err := svc.Send(ctx, "uid-A", SendInput{ReceiverID: "uid-B", Content: "later", Type: db.MessageScheduled, ScheduledAt: &at})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Sent)
	assert.True(t, msgs[0].Timestamp.Equal(t0))

	// receiver cannot see it yet
	conv, err := svc.Conversation(ctx, "uid-B", "uid-A")
	require.NoError(t, err)
	assert.Empty(t, conv)

	// not due yet
	n, err := svc.PromoteDue(ctx, "uid-A")
	require.NoError(t, err)
	assert.Zero(t, n)

	svc.now = func() time.Time { return at.Add(time.Second) }
	n, err = svc.PromoteDue(ctx, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	conv, err = svc.Conversation(ctx, "uid-B", "uid-A")
	require.NoError(t, err)
	require.Len(t, conv, 1)
	assert.True(t, conv[0].Sent)
	assert.True(t, conv[0].Timestamp.Equal(at))
}

func TestPromoteAllDue(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	at := t0.Add(time.Minute)

	for _, sender := range []string{"uid-A", "uid-C"} {
		_, err := svc.Send(ctx, sender, SendInput{ReceiverID: "uid-B", Content: "hi", Type: db.MessageScheduled, ScheduledAt: &at})
		require.NoError(t, err)
	}

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	n, err := svc.PromoteAllDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDeleteOnceMessage(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	msgs, err := svc.Send(ctx, "uid-A", SendInput{ReceiverID: "uid-B", Content: "peek", Type: db.MessageOnce})
	require.NoError(t, err)

	err = svc.Delete(ctx, "uid-C", msgs[0].ID)
	status, _ := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, svc.Delete(ctx, "uid-B", msgs[0].ID))

	conv, err := svc.Conversation(ctx, "uid-A", "uid-B")
	require.NoError(t, err)
	assert.Empty(t, conv)
}

func TestGetVisibility(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	at := t0.Add(time.Hour)

	sent, err := svc.Send(ctx, "uid-A", SendInput{ReceiverID: "uid-B", Content: "now"})
	require.NoError(t, err)
	later, err := svc.Send(ctx, "uid-A", SendInput{ReceiverID: "uid-B", Content: "later", Type: db.MessageScheduled, ScheduledAt: &at})
	require.NoError(t, err)

	m, err := svc.Get(ctx, "uid-B", sent[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "now", m.Content)

	m, err = svc.Get(ctx, "uid-A", later[0].ID)
	require.NoError(t, err)
	assert.False(t, m.Sent)

	for _, tc := range []struct{ caller, id string }{
		{"uid-C", sent[0].ID},
		{"uid-B", later[0].ID},
		{"uid-A", "missing"},
	} {
		_, err := svc.Get(ctx, tc.caller, tc.id)
		status, msg := svcErr.StatusOf(err)
		assert.Equal(t, http.StatusNotFound, status, "caller %s id %s", tc.caller, tc.id)
		assert.Equal(t, "message not found", msg)
	}
}
