// Package bootstrap wires process-level resources shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/AlbertoOrlando/travel-journal-app/internal/cache"
	"github.com/AlbertoOrlando/travel-journal-app/internal/config"
	"github.com/AlbertoOrlando/travel-journal-app/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipSchema connects without applying the schema, for tools that manage
	// migrations themselves.
	SkipSchema bool
	// SkipRedis leaves the cache disabled.
	SkipRedis bool
}

// InitRuntime connects to the database and Redis and prepares the upload
// directory. The returned Redis client is nil when Redis is skipped or
// unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	var (
		db  *gorm.DB
		err error
	)
	if opts.SkipSchema {
		db, err = database.Open(cfg)
		if err == nil {
			err = database.Ping(ctx, db)
		}
	} else {
		db, err = database.Connect(ctx, cfg)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create upload dir: %w", err)
		}
	}

	if opts.SkipRedis {
		return db, nil, nil
	}
	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}
