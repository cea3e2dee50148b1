package events

const (
	SubjectEventNormalized = "repofeed.events.normalized"
)

// Action classifies a canonical event. The zero value means the delivery
// was ignored and must never be persisted.
type Action string

const (
	ActionNone        Action = ""
	ActionPush        Action = "PUSH"
	ActionPullRequest Action = "PULL_REQUEST"
	ActionMerge       Action = "MERGE"
)

// UnknownAuthor is the sentinel stored when no author can be resolved.
const UnknownAuthor = "Unknown"

// Event is the single normalized shape every provider delivery is mapped into.
type Event struct {
	RequestID  string `json:"request_id" bson:"request_id"`
	Author     string `json:"author" bson:"author"`
	Action     Action `json:"action" bson:"action"`
	FromBranch string `json:"from_branch" bson:"from_branch"`
	ToBranch   string `json:"to_branch" bson:"to_branch"`
	Timestamp  string `json:"timestamp" bson:"timestamp"`
}

// Persistable reports whether the event carries an action.
func (e Event) Persistable() bool {
	return e.Action != ActionNone
}

// HasIdentity reports whether the event carries at least one strong
// identifying signal.
func (e Event) HasIdentity() bool {
	return e.RequestID != "" || e.Author != UnknownAuthor
}
