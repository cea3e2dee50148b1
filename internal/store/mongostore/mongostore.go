// Package mongostore persists canonical events in MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

const driver = "mongo"

// Collection name constants.
const (
	colEvents   = "events"
	colCounters = "counters"

	counterEvents = "events"
)

// DefaultDatabase is used when the URI does not name one.
const DefaultDatabase = "repofeed"

// Compile-time interface checks.
var (
	_ store.Store    = (*Store)(nil)
	_ store.Migrator = (*Store)(nil)
)

type Store struct {
	client   *mongo.Client
	events   *mongo.Collection
	counters *mongo.Collection
}

type eventModel struct {
	ID         bson.ObjectID `bson:"_id,omitempty"`
	Seq        int64         `bson:"seq"`
	RequestID  string        `bson:"request_id"`
	Author     string        `bson:"author"`
	Action     string        `bson:"action"`
	FromBranch string        `bson:"from_branch"`
	ToBranch   string        `bson:"to_branch"`
	Timestamp  string        `bson:"timestamp"`
	ReceivedAt time.Time     `bson:"received_at,omitempty"`
}

type counterModel struct {
	Seq int64 `bson:"seq"`
}

// Connect dials MongoDB and verifies connectivity. database may be empty,
// in which case the URI path or DefaultDatabase is used.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetAppName("repofeed").
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, store.Wrap(driver, "connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, store.Wrap(driver, "ping", err)
	}

	if database == "" {
		database = DatabaseFromURI(uri)
	}
	db := client.Database(database)
	return &Store{
		client:   client,
		events:   db.Collection(colEvents),
		counters: db.Collection(colCounters),
	}, nil
}

// DatabaseFromURI extracts the database name from a connection string path.
func DatabaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return DefaultDatabase
}

// Migrate creates the ordering index used by FindRecent.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "seq", Value: -1}}},
		{Keys: bson.D{{Key: "request_id", Value: 1}}},
	})
	return store.Wrap(driver, "migrate", err)
}

func (s *Store) nextSeq(ctx context.Context) (int64, error) {
	var c counterModel
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": counterEvents},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return c.Seq, nil
}

func (s *Store) Insert(ctx context.Context, e events.Event) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return store.Wrap(driver, "next sequence", err)
	}
	_, err = s.events.InsertOne(ctx, toModel(e, seq))
	return store.Wrap(driver, "insert", err)
}

func (s *Store) FindRecent(ctx context.Context, limit int) ([]events.Event, error) {
	cur, err := s.events.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "seq", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(store.ClampLimit(limit))),
	)
	if err != nil {
		return nil, store.Wrap(driver, "find", err)
	}
	var models []eventModel
	if err := cur.All(ctx, &models); err != nil {
		return nil, store.Wrap(driver, "decode", err)
	}

	out := make([]events.Event, 0, len(models))
	for i := range models {
		out = append(out, fromModel(&models[i]))
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Wrap(driver, "ping", s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Wrap(driver, "close", s.client.Disconnect(ctx))
}

func toModel(e events.Event, seq int64) *eventModel {
	return &eventModel{
		Seq:        seq,
		RequestID:  e.RequestID,
		Author:     e.Author,
		Action:     string(e.Action),
		FromBranch: e.FromBranch,
		ToBranch:   e.ToBranch,
		Timestamp:  e.Timestamp,
		ReceivedAt: time.Now().UTC(),
	}
}

func fromModel(m *eventModel) events.Event {
	return events.Event{
		RequestID:  m.RequestID,
		Author:     m.Author,
		Action:     events.Action(m.Action),
		FromBranch: m.FromBranch,
		ToBranch:   m.ToBranch,
		Timestamp:  m.Timestamp,
	}
}
