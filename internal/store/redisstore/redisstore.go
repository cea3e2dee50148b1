// Package redisstore persists canonical events in Redis: an INCR counter
// assigns the sequence and a sorted set scored by that sequence keeps order.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

const driver = "redis"

// DefaultPrefix namespaces all keys written by the store.
const DefaultPrefix = "repofeed:"

var _ store.Store = (*Store)(nil)

type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

// eventModel is the JSON member stored in the sorted set. Seq keeps
// otherwise identical deliveries distinct.
type eventModel struct {
	Seq int64 `json:"seq"`
	events.Event
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(rdb goredis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Connect parses a redis:// URL and verifies connectivity.
func Connect(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, store.Wrap(driver, "parse url", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, store.Wrap(driver, "ping", err)
	}
	return New(rdb, ""), nil
}

func (s *Store) seqKey() string { return s.prefix + "events:seq" }
func (s *Store) logKey() string { return s.prefix + "events:log" }

func (s *Store) Insert(ctx context.Context, e events.Event) error {
	seq, err := s.rdb.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return store.Wrap(driver, "next sequence", err)
	}
	raw, err := json.Marshal(eventModel{Seq: seq, Event: e})
	if err != nil {
		return store.Wrap(driver, "marshal", err)
	}
	err = s.rdb.ZAdd(ctx, s.logKey(), goredis.Z{Score: float64(seq), Member: string(raw)}).Err()
	return store.Wrap(driver, "insert", err)
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]events.Event, error) {
	limit = store.ClampLimit(limit)
	members, err := s.rdb.ZRevRange(ctx, s.logKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, store.Wrap(driver, "find", err)
	}

	out := make([]events.Event, 0, len(members))
	for _, m := range members {
		var em eventModel
		if err := json.Unmarshal([]byte(m), &em); err != nil {
			return nil, store.Wrap(driver, "decode", err)
		}
		out = append(out, em.Event)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Wrap(driver, "ping", s.rdb.Ping(ctx).Err())
}

func (s *Store) Close() error {
	return store.Wrap(driver, "close", s.rdb.Close())
}
