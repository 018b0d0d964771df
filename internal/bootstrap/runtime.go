// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// FixturesPath, when set, is applied after connecting. Only honored
	// outside production.
	FixturesPath string
	// Migrate applies the schema after connecting. Connect already does so
	// outside production; this is how production stores get their tables.
	Migrate bool
}

// Runtime holds the connections a command needs.
type Runtime struct {
	DB            *gorm.DB
	Redis         *redis.Client
	shutdownTrace func(context.Context) error
}

// InitRuntime applies logging settings, starts tracing, connects to the
// database and Redis, and optionally loads fixtures.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	middleware.SetLogLevel(cfg.LogLevel)

	shutdownTrace, err := observability.InitTracing(observability.TracingConfig{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    "inkwell-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdownTrace(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.Migrate {
		if err := database.Migrate(db); err != nil {
			closeDB(db)
			_ = shutdownTrace(ctx)
			return nil, err
		}
		middleware.Logger.Info("Database migration completed")
	}

	rt := &Runtime{
		DB:            db,
		Redis:         cache.InitRedis(cfg.RedisURL),
		shutdownTrace: shutdownTrace,
	}

	if opts.FixturesPath != "" && !cfg.IsProduction() {
		if err := applyFixtures(ctx, db, cfg, opts.FixturesPath); err != nil {
			_ = rt.Close(ctx)
			return nil, err
		}
	}

	return rt, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func applyFixtures(ctx context.Context, db *gorm.DB, cfg *config.Config, path string) error {
	fixtures, err := seed.LoadFixtures(path)
	if err != nil {
		return err
	}
	if _, err := seed.NewSeeder(db, cfg.BcryptCost).ApplyFixtures(ctx, fixtures); err != nil {
		return fmt.Errorf("apply fixtures: %w", err)
	}
	return nil
}

// FlushTraces exports buffered spans and stops the tracer provider.
func (rt *Runtime) FlushTraces(ctx context.Context) {
	if rt.shutdownTrace == nil {
		return
	}
	if err := rt.shutdownTrace(ctx); err != nil {
		middleware.Logger.Warn("trace shutdown failed", "error", err)
	}
}

// Close flushes traces and releases the connections.
func (rt *Runtime) Close(ctx context.Context) error {
	rt.FlushTraces(ctx)
	if rt.Redis != nil {
		_ = rt.Redis.Close()
	}
	sqlDB, err := rt.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
