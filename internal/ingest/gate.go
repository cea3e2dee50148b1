// Package ingest implements the always-acknowledge ingestion gate: every
// delivery is answered with a success status regardless of what happens
// internally, and internal failures are routed to logs and traces only.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/normalize"
	"github.com/jagadeesh/repofeed/internal/observability"
	"github.com/jagadeesh/repofeed/internal/payload"
	"github.com/jagadeesh/repofeed/internal/timefmt"
)

// Outcome is the internal result of a delivery. It never changes the
// status code returned to the sender.
type Outcome string

const (
	OutcomeNoTag       Outcome = "no_tag"
	OutcomeIgnored     Outcome = "ignored"
	OutcomeSkipped     Outcome = "skipped_no_identity"
	OutcomeStored      Outcome = "stored"
	OutcomeStoreFailed Outcome = "store_failed"
	OutcomeFaulted     Outcome = "faulted"
)

const (
	MsgNoTag        = "No X-GitHub-Event header; request ignored"
	MsgPing         = "Webhook configured successfully"
	MsgPRIgnored    = "PR event acknowledged"
	MsgReceived     = "Event received"
	MsgStored       = "Event stored successfully"
	MsgNoIdentity   = "Event received; insufficient identity, not stored"
	MsgReceiverInfo = "Webhook receiver is active. Use POST with X-GitHub-Event header."
)

// Delivery is one inbound webhook request.
type Delivery struct {
	Tag        string
	DeliveryID string
	Body       []byte
}

// Response is what the transport writes back. Err and Outcome are for
// observability only.
type Response struct {
	Status  int
	Body    map[string]any
	Outcome Outcome
	Event   *events.Event
	Err     error
}

type Gate struct {
	Normalizer *normalize.Normalizer
	Sink       Sink
	Tracer     *observability.Tracer
}

func New(sink Sink) *Gate {
	return &Gate{
		Normalizer: normalize.New(),
		Sink:       sink,
		Tracer:     observability.NewTracer(),
	}
}

func ack(outcome Outcome, body map[string]any) Response {
	return Response{Status: http.StatusOK, Body: body, Outcome: outcome}
}

// Ingest runs one delivery through normalization and storage. It never
// returns a non-2xx status and never panics.
func (g *Gate) Ingest(ctx context.Context, d Delivery) (resp Response) {
	tag := strings.TrimSpace(d.Tag)

	ctx, span := g.Tracer.StartIngestSpan(ctx, strings.ToLower(tag), d.DeliveryID)
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("ingest panic: %v", r)
			resp = ack(OutcomeFaulted, map[string]any{"message": MsgReceived, "error": err.Error()})
			resp.Err = err
		}
		requestID := ""
		if resp.Event != nil {
			requestID = resp.Event.RequestID
		}
		g.Tracer.EndIngestSpan(span, string(resp.Outcome), requestID, resp.Err)
		g.log(d, tag, resp)
	}()

	if tag == "" {
		return ack(OutcomeNoTag, map[string]any{"message": MsgNoTag})
	}

	res := g.normalizer().Normalize(tag, payload.Parse(d.Body))
	switch res.Signal {
	case normalize.SignalPing:
		return ack(OutcomeIgnored, map[string]any{"message": MsgPing, "zen": res.Zen})
	case normalize.SignalIgnoredAction:
		return ack(OutcomeIgnored, map[string]any{"message": MsgPRIgnored, "action": res.SubAction})
	case normalize.SignalUnsupported:
		return ack(OutcomeIgnored, map[string]any{"message": MsgReceived, "event": res.Tag})
	}

	ev := res.Event
	if !ev.Persistable() {
		return ack(OutcomeIgnored, map[string]any{"message": MsgReceived, "event": res.Tag})
	}
	if !ev.HasIdentity() {
		resp = ack(OutcomeSkipped, map[string]any{"message": MsgNoIdentity, "event": ev})
		resp.Event = &ev
		return resp
	}
	if ev.RequestID == "" {
		ev.RequestID = strings.ToLower(string(ev.Action)) + "-" + timefmt.Sanitize(ev.Timestamp)
	}

	resp = ack(OutcomeStored, map[string]any{"message": MsgStored, "event": ev})
	resp.Event = &ev
	if err := g.accept(ctx, d.DeliveryID, ev); err != nil {
		resp.Outcome = OutcomeStoreFailed
		resp.Err = err
	}
	return resp
}

func (g *Gate) normalizer() *normalize.Normalizer {
	if g.Normalizer == nil {
		return normalize.New()
	}
	return g.Normalizer
}

func (g *Gate) accept(ctx context.Context, deliveryID string, ev events.Event) error {
	if g.Sink == nil {
		return errors.New("no sink configured")
	}
	return g.Sink.Accept(ctx, deliveryID, ev)
}

func (g *Gate) log(d Delivery, tag string, resp Response) {
	attrs := []any{
		"delivery_id", d.DeliveryID,
		"event", tag,
		"outcome", string(resp.Outcome),
	}
	if resp.Event != nil {
		attrs = append(attrs, "request_id", resp.Event.RequestID, "action", string(resp.Event.Action))
	}

	switch resp.Outcome {
	case OutcomeStoreFailed, OutcomeFaulted:
		slog.Error("webhook ingest failed", append(attrs, "error", resp.Err)...)
	case OutcomeStored:
		slog.Info("webhook event stored", attrs...)
	default:
		slog.Debug("webhook acknowledged without storage", attrs...)
	}
}
