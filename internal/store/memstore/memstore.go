// Package memstore is an in-process store used in development and tests.
package memstore

import (
	"context"
	"sync"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

const driver = "memory"

var _ store.Store = (*Store)(nil)

type record struct {
	seq   int64
	event events.Event
}

type Store struct {
	mu      sync.RWMutex
	records []record
	seq     int64
	closed  bool

	// FailWith, when set, is returned (wrapped) from every operation.
	FailWith error
}

func New() *Store {
	return &Store{}
}

func (s *Store) check(op string) error {
	if s.closed {
		return store.Wrap(driver, op, store.ErrClosed)
	}
	return store.Wrap(driver, op, s.FailWith)
}

func (s *Store) Insert(_ context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert"); err != nil {
		return err
	}
	s.seq++
	s.records = append(s.records, record{seq: s.seq, event: e})
	return nil
}

func (s *Store) FindRecent(_ context.Context, limit int) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check("find"); err != nil {
		return nil, err
	}
	limit = store.ClampLimit(limit)

	out := make([]events.Event, 0, min(limit, len(s.records)))
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i].event)
	}
	return out, nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check("ping")
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
