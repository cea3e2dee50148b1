package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/jagadeesh/repofeed/migrations"
)

// Up applies the embedded PostgreSQL schema.
func Up(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("db pool is nil")
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	db, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	defer func() { _ = db.Close() }()

	return run(ctx, migrations.Postgres, "postgres", db)
}

// UpSQLite applies the embedded SQLite schema to an open database.
func UpSQLite(ctx context.Context, sqlDB *sql.DB) error {
	if sqlDB == nil {
		return fmt.Errorf("sqlite db is nil")
	}
	db, err := sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migration driver: %w", err)
	}
	return run(ctx, migrations.SQLite, "sqlite", db)
}

func run(ctx context.Context, fsys fs.FS, dir string, db database.Driver) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dir, db)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	// m.Close would also close the database driver, which callers own.
	defer func() { _ = src.Close() }()

	// migrate.Up() is not context-aware; we still accept ctx for future evolutions.
	_ = ctx

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
