package domain

// Event categories used by the progress reporter.
const (
	EventAnalyzing = "analyzing"
	EventSearching = "searching"
	EventInfo      = "info"
	EventSuccess   = "success"
	EventWarning   = "warning"
	EventError     = "error"
)

// SearchEvent is one entry in a run's append-only progress log. IDs increase
// monotonically within a run; events are never mutated or removed.
type SearchEvent struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}
