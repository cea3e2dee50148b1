// Package storage selects and opens the configured event store driver.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/store"
	"github.com/jagadeesh/repofeed/internal/store/memstore"
	"github.com/jagadeesh/repofeed/internal/store/mongostore"
	"github.com/jagadeesh/repofeed/internal/store/pgstore"
	"github.com/jagadeesh/repofeed/internal/store/redisstore"
	"github.com/jagadeesh/repofeed/internal/store/sqlitestore"
)

// Resolve picks the concrete driver for cfg. With STORE_DRIVER=auto the
// first configured backend wins in the order mongo, postgres, sqlite,
// redis; development falls back to memory.
func Resolve(cfg config.Config) (string, error) {
	switch cfg.StoreDriver {
	case config.DriverAuto, "":
	case config.DriverMemory:
		return config.DriverMemory, nil
	default:
		if !cfg.HasStore() {
			return "", fmt.Errorf("%w: STORE_DRIVER=%s has no connection settings", store.ErrNotConfigured, cfg.StoreDriver)
		}
		return cfg.StoreDriver, nil
	}

	switch {
	case cfg.MongoURI != "":
		return config.DriverMongo, nil
	case cfg.DBURL != "":
		return config.DriverPostgres, nil
	case cfg.SQLitePath != "":
		return config.DriverSQLite, nil
	case cfg.RedisURL != "":
		return config.DriverRedis, nil
	case cfg.IsDev():
		return config.DriverMemory, nil
	}
	return "", store.ErrNotConfigured
}

// Open connects to the store selected by Resolve. Schema migrations run
// when AUTO_MIGRATE is set; mongo indexes are always ensured.
func Open(ctx context.Context, cfg config.Config) (store.Store, error) {
	driver, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var s store.Store
	switch driver {
	case config.DriverMongo:
		s, err = mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		s, err = pgstore.Connect(ctx, cfg.DBURL)
	case config.DriverSQLite:
		s, err = sqlitestore.Open(ctx, cfg.SQLitePath)
	case config.DriverRedis:
		s, err = redisstore.Connect(ctx, cfg.RedisURL)
	case config.DriverMemory:
		slog.Warn("using in-memory event store; events are lost on restart")
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate || driver == config.DriverMongo {
		if err := Migrate(ctx, s); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	slog.Info("event store opened", "driver", driver, "auto_migrate", cfg.AutoMigrate)
	return s, nil
}

// Migrate applies schema setup if the driver needs any.
func Migrate(ctx context.Context, s store.Store) error {
	m, ok := s.(store.Migrator)
	if !ok {
		return nil
	}
	return m.Migrate(ctx)
}
