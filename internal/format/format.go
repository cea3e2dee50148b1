// Package format turns stored canonical events into display views.
package format

import (
	"fmt"
	"strings"

	"github.com/jagadeesh/repofeed/internal/events"
	"github.com/jagadeesh/repofeed/internal/timefmt"
)

// DefaultUnknownDisplayName replaces the "Unknown" author sentinel on read.
// This is a single identity substitution, not a general aliasing feature.
const DefaultUnknownDisplayName = "Repository Owner"

const (
	fallbackTo   = "main"
	fallbackFrom = "feature"
)

// View is a canonical event enriched for display. It is never persisted.
type View struct {
	Message    string        `json:"message"`
	Timestamp  string        `json:"timestamp"`
	Action     events.Action `json:"action"`
	Author     string        `json:"author"`
	RequestID  string        `json:"request_id"`
	FromBranch string        `json:"from_branch"`
	ToBranch   string        `json:"to_branch"`
}

type Formatter struct {
	// UnknownDisplayName is shown instead of the "Unknown" sentinel. Empty
	// disables the substitution.
	UnknownDisplayName string
}

func New(unknownDisplayName string) *Formatter {
	return &Formatter{UnknownDisplayName: unknownDisplayName}
}

func (f *Formatter) author(raw string) string {
	a := strings.TrimSpace(raw)
	if a == "" {
		a = events.UnknownAuthor
	}
	if a == events.UnknownAuthor && f != nil && f.UnknownDisplayName != "" {
		return f.UnknownDisplayName
	}
	return a
}

// Format builds the view for one stored event.
func (f *Formatter) Format(e events.Event) View {
	author := f.author(e.Author)
	to := or(e.ToBranch, fallbackTo)
	from := or(e.FromBranch, fallbackFrom)

	var msg string
	switch e.Action {
	case events.ActionPullRequest:
		msg = fmt.Sprintf("%s submitted a pull request from %s to %s on %s", author, from, to, e.Timestamp)
	case events.ActionMerge:
		msg = fmt.Sprintf("%s merged branch %s to %s on %s", author, from, to, e.Timestamp)
	default:
		// PUSH and any legacy action found in storage.
		msg = fmt.Sprintf("%s pushed to %s on %s", author, to, e.Timestamp)
	}

	return View{
		Message:    msg,
		Timestamp:  timefmt.AnnotateIST(e.Timestamp),
		Action:     e.Action,
		Author:     author,
		RequestID:  e.RequestID,
		FromBranch: e.FromBranch,
		ToBranch:   e.ToBranch,
	}
}

// FormatAll formats events preserving order. The result is never nil.
func (f *Formatter) FormatAll(list []events.Event) []View {
	out := make([]View, 0, len(list))
	for _, e := range list {
		out = append(out, f.Format(e))
	}
	return out
}

func or(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
