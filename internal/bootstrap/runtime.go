// Package bootstrap wires runtime dependencies for the command entrypoints.
package bootstrap

import (
	"fmt"

	"parley/internal/cache"
	"parley/internal/config"
	"parley/internal/database"
	"parley/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates the database with demo users and friendships.
	// Development only.
	SeedDemoData bool
	DemoUsers    int
}

// InitRuntime connects to the database and Redis and optionally runs demo
// seeding. The Redis client may be nil when the server is unreachable;
// callers must treat it as optional.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		if err := seed.Demo(db, seed.Options{Users: opts.DemoUsers}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
