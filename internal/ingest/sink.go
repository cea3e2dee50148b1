package ingest

import (
	"context"
	"fmt"

	"github.com/jagadeesh/repofeed/internal/bus"
	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

// Sink receives normalized events that passed the identity check.
type Sink interface {
	Accept(ctx context.Context, deliveryID string, e events.Event) error
}

// StoreSink inserts directly into the event store.
type StoreSink struct {
	Store store.Store
}

func (s StoreSink) Accept(ctx context.Context, _ string, e events.Event) error {
	if s.Store == nil {
		return store.ErrNotConfigured
	}
	return s.Store.Insert(ctx, e)
}

// BusSink hands the event to a worker over the bus; the worker performs the
// insert.
type BusSink struct {
	Bus     bus.Bus
	Subject string
}

func (s BusSink) Accept(ctx context.Context, deliveryID string, e events.Event) error {
	if s.Bus == nil {
		return fmt.Errorf("bus not configured")
	}
	subject := s.Subject
	if subject == "" {
		subject = events.SubjectEventNormalized
	}
	b, err := events.EncodeCloudEvent(e, deliveryID)
	if err != nil {
		return err
	}
	return s.Bus.Publish(ctx, subject, b)
}
