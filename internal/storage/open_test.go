package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jagadeesh/repofeed/internal/config"
	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
	"github.com/jagadeesh/repofeed/internal/store/memstore"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"mongo first", config.Config{StoreDriver: config.DriverAuto, MongoURI: "mongodb://x", DBURL: "postgres://x"}, config.DriverMongo},
		{"postgres", config.Config{StoreDriver: config.DriverAuto, DBURL: "postgres://x", RedisURL: "redis://x"}, config.DriverPostgres},
		{"sqlite", config.Config{StoreDriver: config.DriverAuto, SQLitePath: "/tmp/x.db"}, config.DriverSQLite},
		{"redis", config.Config{StoreDriver: config.DriverAuto, RedisURL: "redis://x"}, config.DriverRedis},
		{"dev memory", config.Config{Env: "dev", StoreDriver: config.DriverAuto}, config.DriverMemory},
		{"explicit", config.Config{StoreDriver: config.DriverRedis, MongoURI: "mongodb://x", RedisURL: "redis://x"}, config.DriverRedis},
	}
	for _, tc := range cases {
		got, err := Resolve(tc.cfg)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestResolveNotConfigured(t *testing.T) {
	for _, cfg := range []config.Config{
		{Env: "production", StoreDriver: config.DriverAuto},
		{Env: "dev", StoreDriver: config.DriverPostgres},
	} {
		if _, err := Resolve(cfg); !errors.Is(err, store.ErrNotConfigured) {
			t.Fatalf("Resolve(%+v) = %v, want ErrNotConfigured", cfg, err)
		}
	}
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), config.Config{Env: "dev", StoreDriver: config.DriverAuto})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*memstore.Store); !ok {
		t.Fatalf("expected memory store, got %T", s)
	}
}

func TestOpenSQLiteWithMigrations(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		Env:         "production",
		StoreDriver: config.DriverAuto,
		SQLitePath:  filepath.Join(t.TempDir(), "events.db"),
		AutoMigrate: true,
	}
	s, err := Open(ctx, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	e := events.Event{RequestID: "abc", Author: "alice", Action: events.ActionPush, ToBranch: "main", Timestamp: "1st January 2026 - 9:00 AM UTC"}
	if err := s.Insert(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindRecent(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != e {
		t.Fatalf("got %+v", got)
	}
}
