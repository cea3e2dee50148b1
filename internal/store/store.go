// Package store defines the contract between the ingestion core and the
// external event store.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jagadeesh/repofeed/internal/events"
)

// MaxRecent caps every read to protect the store from unbounded scans.
const MaxRecent = 100

var (
	ErrClosed        = errors.New("store closed")
	ErrNotConfigured = errors.New("store not configured")
)

// Store persists canonical events. Implementations assign a monotonically
// increasing sequence on insert; FindRecent orders by that sequence,
// newest first. No duplicate suppression is performed.
type Store interface {
	Insert(ctx context.Context, e events.Event) error
	FindRecent(ctx context.Context, limit int) ([]events.Event, error)
	Ping(ctx context.Context) error
	Close() error
}

// Migrator is implemented by drivers that need schema or index setup.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Error reports an I/O failure from a store driver.
type Error struct {
	Driver string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Driver, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap returns nil for a nil err, otherwise an *Error.
func Wrap(driver, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Driver: driver, Op: op, Err: err}
}

// ClampLimit bounds a requested read size to [1, MaxRecent].
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxRecent {
		return MaxRecent
	}
	return limit
}
