package memstore

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

func ctx() context.Context { return context.Background() }

func TestFindRecentIsNewestFirstAndCapped(t *testing.T) {
	s := New()
	for i := 0; i < store.MaxRecent+20; i++ {
		if err := s.Insert(ctx(), events.Event{RequestID: strconv.Itoa(i), Action: events.ActionPush}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FindRecent(ctx(), 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != store.MaxRecent {
		t.Fatalf("expected %d events, got %d", store.MaxRecent, len(got))
	}
	if got[0].RequestID != strconv.Itoa(store.MaxRecent+19) {
		t.Fatalf("expected newest first, got %q", got[0].RequestID)
	}

	got, err = s.FindRecent(ctx(), 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2].RequestID != strconv.Itoa(store.MaxRecent+17) {
		t.Fatalf("unexpected page %+v", got)
	}
}

func TestDuplicatesAreKept(t *testing.T) {
	s := New()
	e := events.Event{RequestID: "abc", Action: events.ActionPush}
	_ = s.Insert(ctx(), e)
	_ = s.Insert(ctx(), e)
	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
}

func TestFailWith(t *testing.T) {
	s := New()
	s.FailWith = errors.New("disk on fire")

	err := s.Insert(ctx(), events.Event{})
	var se *store.Error
	if !errors.As(err, &se) || se.Op != "insert" || se.Driver != "memory" {
		t.Fatalf("expected store error, got %v", err)
	}
	if _, err := s.FindRecent(ctx(), 10); err == nil {
		t.Fatalf("expected find error")
	}
	if err := s.Ping(ctx()); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestClosed(t *testing.T) {
	s := New()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx()); !errors.Is(err, store.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
