package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/logger"
	"github.com/oggyb/glidefade/internal/service/match"
)

type countingPromoter struct {
	calls atomic.Int64
	err   error
}

func (c *countingPromoter) PromoteAllDue(context.Context) (int64, error) {
	c.calls.Add(1)
	return 1, c.err
}

type countingReconciler struct{ calls atomic.Int64 }

func (c *countingReconciler) Reconcile(context.Context) (match.Result, error) {
	c.calls.Add(1)
	return match.Result{}, nil
}

func testConfig(interval, reconcile time.Duration) *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler.Interval = interval
	cfg.Scheduler.ReconcileInterval = reconcile
	return cfg
}

func runFor(t *testing.T, s *Scheduler, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, s.Run(ctx))
}

func TestRunsBothJobs(t *testing.T) {
	p := &countingPromoter{}
	r := &countingReconciler{}
	s := New(testConfig(10*time.Millisecond, 20*time.Millisecond), p, r, logger.Discard())

	runFor(t, s, 150*time.Millisecond)

	assert.GreaterOrEqual(t, p.calls.Load(), int64(3))
	assert.GreaterOrEqual(t, r.calls.Load(), int64(1))
}

func TestReconcileDisabled(t *testing.T) {
	p := &countingPromoter{}
	r := &countingReconciler{}
	s := New(testConfig(10*time.Millisecond, 0), p, r, logger.Discard())

	runFor(t, s, 60*time.Millisecond)

	assert.Positive(t, p.calls.Load())
	assert.Zero(t, r.calls.Load())
}

func TestErrorsDoNotStopTheLoop(t *testing.T) {
	p := &countingPromoter{err: errors.New("db down")}
	s := New(testConfig(10*time.Millisecond, 0), p, nil, logger.Discard())

	runFor(t, s, 80*time.Millisecond)

	assert.GreaterOrEqual(t, p.calls.Load(), int64(2))
}

func TestDefaultInterval(t *testing.T) {
	s := New(testConfig(0, 0), &countingPromoter{}, nil, logger.Discard())
	assert.Equal(t, defaultInterval, s.interval)
}
