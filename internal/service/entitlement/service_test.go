package entitlement

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

func setupService(t *testing.T) *Service {
	t.Helper()
	appCtx, _ := testutil.NewAppContext(t)
	return NewService(appCtx)
}

func TestIssueFreeTierWithoutProfile(t *testing.T) {
	svc := setupService(t)

	tok, err := svc.Issue(context.Background(), "uid-A")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, tok.Plan)
	assert.Equal(t, 20, tok.SwipeLimit)

	claims, err := svc.Verify(tok.Token, "uid-A")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, claims.Plan)
	assert.False(t, claims.Unlimited())
}

func TestIssuePremium(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	require.NoError(t, svc.appCtx.DB.Create(&db.Profile{UserID: "uid-P", Premium: true}).Error)

	tok, err := svc.Issue(ctx, "uid-P")
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, tok.Plan)

	claims, err := svc.Verify(tok.Token, "uid-P")
	require.NoError(t, err)
	assert.True(t, claims.Unlimited())
}

func TestVerifyRejectsForeignAndExpiredTokens(t *testing.T) {
	svc := setupService(t)
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	tok, err := svc.Issue(context.Background(), "uid-A")
	require.NoError(t, err)

	_, err = svc.Verify(tok.Token, "uid-B")
	status, _ := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusUnauthorized, status)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.Verify(tok.Token, "uid-A")
	status, _ = svcErr.StatusOf(err)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestResolveFallsBackToFreeTier(t *testing.T) {
	svc := setupService(t)

	claims := svc.Resolve("", "uid-A")
	assert.Equal(t, PlanFree, claims.Plan)

	claims = svc.Resolve("not-a-jwt", "uid-A")
	assert.Equal(t, PlanFree, claims.Plan)
	assert.Equal(t, "uid-A", claims.Subject)
}

func TestIssueRequiresUser(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Issue(context.Background(), "")
	status, _ := svcErr.StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)
}
