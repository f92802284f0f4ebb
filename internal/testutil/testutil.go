// Package testutil wires throwaway SQLite and miniredis backends for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/glidefade/internal/app"
	"github.com/oggyb/glidefade/internal/cache"
	"github.com/oggyb/glidefade/internal/config"
	"github.com/oggyb/glidefade/internal/db"
	"github.com/oggyb/glidefade/internal/logger"
)

// NewDB opens a named in-memory SQLite database private to t and migrates it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(gormlogger.Discard))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory db alive and serializes writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// NewRedis starts a miniredis instance bound to t.
func NewRedis(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{}
	cfg.Redis.Addr = mr.Addr()
	rc := cache.NewRedisCache(cfg)
	t.Cleanup(func() { _ = rc.Client.Close() })
	return rc, mr
}

// Config returns the settings tests rely on.
func Config() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = "test"
	cfg.Swipe.DailyLimit = 20
	cfg.Entitlement.Secret = "test-entitlement-secret"
	cfg.Entitlement.TTL = time.Hour
	cfg.S3.Bucket = "test-bucket"
	cfg.S3.PublicBaseURL = "https://cdn.test"
	cfg.S3.MaxUploadBytes = 1 << 20
	return cfg
}

// NewAppContext bundles a fresh DB, Redis and a silent logger.
func NewAppContext(t *testing.T) (*app.AppContext, *miniredis.Miniredis) {
	t.Helper()
	rc, mr := NewRedis(t)
	return app.New(Config(), NewDB(t), rc, logger.Discard()), mr
}
