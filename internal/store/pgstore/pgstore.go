// Package pgstore persists canonical events in PostgreSQL.
package pgstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/migrate"
	"github.com/jagadeesh/repofeed/internal/store"
)

const driver = "postgres"

var (
	_ store.Store    = (*Store)(nil)
	_ store.Migrator = (*Store)(nil)
)

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against dbURL.
func Connect(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := openPool(ctx, dbURL)
	if err != nil {
		return nil, store.Wrap(driver, "connect", err)
	}
	return New(pool), nil
}

func (s *Store) Migrate(ctx context.Context) error {
	return store.Wrap(driver, "migrate", migrate.Up(ctx, s.pool))
}

func (s *Store) Insert(ctx context.Context, e events.Event) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO events (request_id, author, action, from_branch, to_branch, ts)
VALUES ($1, $2, $3, $4, $5, $6)
`, e.RequestID, e.Author, string(e.Action), e.FromBranch, e.ToBranch, e.Timestamp)
	return store.Wrap(driver, "insert", err)
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]events.Event, error) {
	rows, err := s.pool.Query(ctx, `
SELECT request_id, author, action, from_branch, to_branch, ts
FROM events
ORDER BY id DESC
LIMIT $1
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
	if s.pool == nil {
		return store.Wrap(driver, "ping", store.ErrNotConfigured)
	}
	return store.Wrap(driver, "ping", s.pool.Ping(ctx))
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
