// Package sqlitestore persists canonical events in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/migrate"
	"github.com/jagadeesh/repofeed/internal/store"
)

const driver = "sqlite"

var (
	_ store.Store    = (*Store)(nil)
	_ store.Migrator = (*Store)(nil)
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, store.Wrap(driver, "open", err)
	}
	// SQLite serialises writers; one connection also keeps :memory: coherent.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, store.Wrap(driver, "ping", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return store.Wrap(driver, "migrate", migrate.UpSQLite(ctx, s.db))
}

func (s *Store) Insert(ctx context.Context, e events.Event) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO events (request_id, author, action, from_branch, to_branch, ts)
VALUES (?, ?, ?, ?, ?, ?)
`, e.RequestID, e.Author, string(e.Action), e.FromBranch, e.ToBranch, e.Timestamp)
	return store.Wrap(driver, "insert", err)
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]events.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT request_id, author, action, from_branch, to_branch, ts
FROM events
ORDER BY id DESC
LIMIT ?
`, store.ClampLimit(limit))
	if err != nil {
		return nil, store.Wrap(driver, "find", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var e events.Event
		var action string
		if err := rows.Scan(&e.RequestID, &e.Author, &action, &e.FromBranch, &e.ToBranch, &e.Timestamp); err != nil {
			return nil, store.Wrap(driver, "scan", err)
		}
		e.Action = events.Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap(driver, "find", err)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Wrap(driver, "ping", s.db.PingContext(ctx))
}

func (s *Store) Close() error {
	return store.Wrap(driver, "close", s.db.Close())
}
