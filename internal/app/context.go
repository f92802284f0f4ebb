package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/glidefade/internal/cache"
	"github.com/oggyb/glidefade/internal/config"
)

// AppContext holds shared dependencies (Config, DB, Redis, Logger)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
}

// New creates a new AppContext
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
	}
}
