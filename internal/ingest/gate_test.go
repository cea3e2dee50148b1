package ingest

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/normalize"
	"github.com/jagadeesh/repofeed/internal/store/memstore"
)

const fixedTS = "30th January 2026 - 8:06 AM UTC"

func newGate(sink Sink) *Gate {
	g := New(sink)
	g.Normalizer = &normalize.Normalizer{Now: func() time.Time {
		return time.Date(2026, 1, 30, 8, 6, 0, 0, time.UTC)
	}}
	return g
}

func deliver(g *Gate, tag, body string) Response {
	return g.Ingest(context.Background(), Delivery{Tag: tag, DeliveryID: "d-1", Body: []byte(body)})
}

func mustOK(t *testing.T, r Response) {
	t.Helper()
	if r.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", r.Status)
	}
}

func TestEmptyTagIsAcknowledged(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "  ", `{"after": "abc"}`)
	mustOK(t, r)
	if r.Outcome != OutcomeNoTag || r.Body["message"] != MsgNoTag {
		t.Fatalf("unexpected response %+v", r)
	}
	if s.Len() != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestPingStoresNothing(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "ping", `{"zen": "Speak like a human."}`)
	mustOK(t, r)
	if r.Body["message"] != MsgPing || r.Body["zen"] != "Speak like a human." {
		t.Fatalf("unexpected body %+v", r.Body)
	}
	if s.Len() != 0 {
		t.Fatalf("ping must not be stored")
	}
}

func TestIgnoredDeliveries(t *testing.T) {
	s := memstore.New()
	g := newGate(StoreSink{Store: s})

	r := deliver(g, "pull_request", `{"action": "labeled", "number": 3}`)
	mustOK(t, r)
	if r.Body["message"] != MsgPRIgnored || r.Body["action"] != "labeled" {
		t.Fatalf("unexpected body %+v", r.Body)
	}

	r = deliver(g, "Issues", `{}`)
	mustOK(t, r)
	if r.Body["message"] != MsgReceived || r.Body["event"] != "issues" {
		t.Fatalf("unexpected body %+v", r.Body)
	}

	if s.Len() != 0 {
		t.Fatalf("ignored deliveries must not be stored")
	}
}

func TestPushIsStored(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "push",
		`{"ref": "refs/heads/main", "head_commit": {"id": "abc123"}, "pusher": {"name": "alice"}}`)
	mustOK(t, r)
	if r.Outcome != OutcomeStored || r.Body["message"] != MsgStored {
		t.Fatalf("unexpected response %+v", r)
	}

	got, _ := s.FindRecent(context.Background(), 10)
	want := events.Event{RequestID: "abc123", Author: "alice", Action: events.ActionPush, ToBranch: "main", Timestamp: fixedTS}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestPullRequestIsStored(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "pull_request", `{
		"action": "opened", "number": 42, "sender": {"login": "bob"},
		"pull_request": {"head": {"ref": "feature-x"}, "base": {"ref": "main"}}
	}`)
	mustOK(t, r)

	got, _ := s.FindRecent(context.Background(), 10)
	want := events.Event{RequestID: "42", Author: "bob", Action: events.ActionPullRequest, FromBranch: "feature-x", ToBranch: "main", Timestamp: fixedTS}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestInsufficientIdentityIsSkipped(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "pull_request", `{"action": "opened"}`)
	mustOK(t, r)
	if r.Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped outcome, got %s", r.Outcome)
	}
	if s.Len() != 0 {
		t.Fatalf("event without identity must not be stored")
	}
}

func TestRequestIDBackfill(t *testing.T) {
	s := memstore.New()
	r := deliver(newGate(StoreSink{Store: s}), "pull_request",
		`{"action": "closed", "pull_request": {"merged": true, "user": {"login": "carol"}}}`)
	mustOK(t, r)

	got, _ := s.FindRecent(context.Background(), 1)
	if len(got) != 1 || got[0].RequestID != "merge-30th-January-2026---8-06-AM-UTC" {
		t.Fatalf("expected synthesized request id, got %+v", got)
	}
	if r.Event == nil || r.Event.RequestID != got[0].RequestID {
		t.Fatalf("response must echo the stored event")
	}
}

func TestStoreFailureIsSwallowed(t *testing.T) {
	s := memstore.New()
	s.FailWith = errors.New("connection refused")

	r := deliver(newGate(StoreSink{Store: s}), "push", `{"after": "abc", "pusher": {"name": "alice"}}`)
	mustOK(t, r)
	if r.Body["message"] != MsgStored {
		t.Fatalf("store failure must be opaque to the sender, got %+v", r.Body)
	}
	if r.Outcome != OutcomeStoreFailed || r.Err == nil {
		t.Fatalf("store failure must still be observable internally: %+v", r)
	}
	if _, leaked := r.Body["error"]; leaked {
		t.Fatalf("store failure detail must not reach the sender")
	}
}

func TestMissingSinkIsSwallowed(t *testing.T) {
	r := deliver(newGate(nil), "push", `{"after": "abc"}`)
	mustOK(t, r)
	if r.Outcome != OutcomeStoreFailed {
		t.Fatalf("expected store_failed, got %s", r.Outcome)
	}
}

type panicSink struct{}

func (panicSink) Accept(context.Context, string, events.Event) error { panic("sink exploded") }

func TestPanicBecomesAcknowledgement(t *testing.T) {
	r := deliver(newGate(panicSink{}), "push", `{"after": "abc"}`)
	mustOK(t, r)
	if r.Outcome != OutcomeFaulted || r.Body["message"] != MsgReceived {
		t.Fatalf("unexpected response %+v", r)
	}
	if r.Body["error"] == nil {
		t.Fatalf("expected diagnostic detail in body")
	}
}

type recordingBus struct {
	subject string
	data    []byte
	err     error
}

func (b *recordingBus) Publish(_ context.Context, subject string, data []byte) error {
	b.subject, b.data = subject, data
	return b.err
}

func (b *recordingBus) Close() {}

func TestBusSinkPublishesCloudEvent(t *testing.T) {
	b := &recordingBus{}
	r := deliver(newGate(BusSink{Bus: b}), "push", `{"after": "abc", "pusher": {"name": "alice"}}`)
	mustOK(t, r)
	if r.Outcome != OutcomeStored {
		t.Fatalf("unexpected outcome %s", r.Outcome)
	}
	if b.subject != events.SubjectEventNormalized {
		t.Fatalf("unexpected subject %q", b.subject)
	}
	e, id, err := events.DecodeCloudEvent(b.data)
	if err != nil {
		t.Fatal(err)
	}
	if id != "d-1" || e.RequestID != "abc" || e.Author != "alice" {
		t.Fatalf("unexpected published event %q %+v", id, e)
	}
}

func TestBusFailureIsSwallowed(t *testing.T) {
	b := &recordingBus{err: errors.New("nats down")}
	r := deliver(newGate(BusSink{Bus: b}), "push", `{"after": "abc"}`)
	mustOK(t, r)
	if r.Outcome != OutcomeStoreFailed {
		t.Fatalf("unexpected outcome %s", r.Outcome)
	}
}

func TestMalformedBodiesAreAcknowledged(t *testing.T) {
	s := memstore.New()
	g := newGate(StoreSink{Store: s})
	for _, body := range []string{"", "not json", "[1,2,3]", `{"commits": 7}`} {
		for _, tag := range []string{"push", "pull_request", "ping", "star"} {
			mustOK(t, deliver(g, tag, body))
		}
	}
}
