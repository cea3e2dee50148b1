package worker

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/store"
)

const DefaultQueue = "repofeed-workers"

// EventConsumer persists normalized events published by the API process.
type EventConsumer struct {
	Sub     *nats.Subscription
	Store   store.Store
	Limiter *rate.Limiter
}

// NewEventConsumer throttles inserts to rps (burst 2*rps). rps <= 0
// disables throttling.
func NewEventConsumer(s store.Store, rps int) *EventConsumer {
	c := &EventConsumer{Store: s}
	if rps > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), 2*rps)
	}
	return c
}

func (c *EventConsumer) Subscribe(ctx context.Context, nc *nats.Conn, queue string) error {
	if nc == nil {
		return nil
	}
	if queue == "" {
		queue = DefaultQueue
	}

	sub, err := nc.QueueSubscribe(events.SubjectEventNormalized, queue, func(msg *nats.Msg) {
		_ = c.Handle(ctx, msg.Data)
	})
	if err != nil {
		return err
	}
	c.Sub = sub

	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()

	return nil
}

// Handle decodes one bus message and inserts it. Failures are logged and
// returned; the message is not redelivered.
func (c *EventConsumer) Handle(ctx context.Context, data []byte) error {
	e, deliveryID, err := events.DecodeCloudEvent(data)
	if err != nil {
		slog.Error("bad normalized event", "error", err)
		return err
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if c.Store == nil {
		return store.ErrNotConfigured
	}
	if err := c.Store.Insert(ctx, e); err != nil {
		slog.Error("event insert failed",
			"delivery_id", deliveryID,
			"request_id", e.RequestID,
			"error", err,
		)
		return err
	}
	slog.Info("event stored",
		"delivery_id", deliveryID,
		"request_id", e.RequestID,
		"action", string(e.Action),
	)
	return nil
}
