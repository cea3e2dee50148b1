// Package normalize maps raw provider webhook payloads onto the canonical
// event model. It performs no I/O; the only impurity is the clock used to
// stamp each event.
package normalize

import (
	"strings"
	"time"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/payload"
	"github.com/jagadeesh/repofeed/internal/timefmt"
)

const (
	TagPing        = "ping"
	TagPush        = "push"
	TagPullRequest = "pull_request"
)

// DefaultBranch is assumed when a push does not name its ref.
const DefaultBranch = "main"

// Signal tells the caller what to do with a delivery.
type Signal string

const (
	// SignalEvent means Result.Event should be considered for storage.
	SignalEvent Signal = "event"
	// SignalPing acknowledges a provider handshake.
	SignalPing Signal = "ping"
	// SignalIgnoredAction is a pull_request sub-action we do not record.
	SignalIgnoredAction Signal = "ignored_action"
	// SignalUnsupported is any event type outside push/pull_request.
	SignalUnsupported Signal = "unsupported"
)

// Result is the outcome of normalizing one delivery.
type Result struct {
	Signal Signal
	Event  events.Event

	// Tag is the trimmed, lower-cased event type.
	Tag string
	// SubAction is the lower-cased pull_request action, when present.
	SubAction string
	// Zen is echoed back on ping deliveries.
	Zen string
}

// Ignored reports whether the delivery must be acknowledged without storage.
func (r Result) Ignored() bool {
	return r.Signal != SignalEvent
}

type Normalizer struct {
	Now func() time.Time
}

func New() *Normalizer {
	return &Normalizer{Now: time.Now}
}

// Normalize classifies a delivery by its event type tag and builds the
// canonical event for push and pull_request deliveries.
func (n *Normalizer) Normalize(tag string, doc payload.Document) Result {
	tag = strings.ToLower(strings.TrimSpace(tag))

	switch tag {
	case TagPing:
		return Result{Signal: SignalPing, Tag: tag, Zen: doc.String("$.zen")}
	case TagPush:
		return Result{Signal: SignalEvent, Tag: tag, Event: n.push(doc)}
	case TagPullRequest:
		return n.pullRequest(tag, doc)
	default:
		return Result{Signal: SignalUnsupported, Tag: tag}
	}
}

func (n *Normalizer) timestamp() string {
	now := time.Now
	if n != nil && n.Now != nil {
		now = n.Now
	}
	return timefmt.Format(now())
}

func (n *Normalizer) push(doc payload.Document) events.Event {
	ts := n.timestamp()

	requestID := doc.First("$.after", "$.head_commit.id")
	if requestID == "" {
		requestID = "push-" + timefmt.Sanitize(ts)
	}

	return events.Event{
		RequestID: requestID,
		Author:    pushAuthor(doc),
		Action:    events.ActionPush,
		ToBranch:  branchFromRef(doc.String("$.ref")),
		Timestamp: ts,
	}
}

func pushAuthor(doc payload.Document) string {
	if a := doc.First("$.commits[0].author.name", "$.commits[0].author.username"); a != "" {
		return a
	}
	if email := doc.String("$.commits[0].author.email"); email != "" {
		if local, _, _ := strings.Cut(email, "@"); strings.TrimSpace(local) != "" {
			return local
		}
	}
	if a := doc.First("$.pusher.name", "$.pusher.login"); a != "" {
		return a
	}
	return events.UnknownAuthor
}

func branchFromRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return DefaultBranch
	}
	parts := strings.Split(ref, "/")
	if last := parts[len(parts)-1]; last != "" {
		return last
	}
	return DefaultBranch
}

func (n *Normalizer) pullRequest(tag string, doc payload.Document) Result {
	sub := strings.ToLower(strings.TrimSpace(doc.String("$.action")))

	var action events.Action
	switch {
	case sub == "closed" && doc.Bool("$.pull_request.merged"):
		action = events.ActionMerge
	case sub == "opened", sub == "synchronize", sub == "reopened":
		action = events.ActionPullRequest
	default:
		return Result{Signal: SignalIgnoredAction, Tag: tag, SubAction: sub}
	}

	number := doc.String("$.number")
	if number == "0" {
		number = ""
	}

	author := doc.First("$.sender.login", "$.pull_request.user.login")
	if author == "" {
		author = events.UnknownAuthor
	}

	return Result{
		Signal:    SignalEvent,
		Tag:       tag,
		SubAction: sub,
		Event: events.Event{
			RequestID:  number,
			Author:     author,
			Action:     action,
			FromBranch: doc.String("$.pull_request.head.ref"),
			ToBranch:   doc.String("$.pull_request.base.ref"),
			Timestamp:  n.timestamp(),
		},
	}
}
