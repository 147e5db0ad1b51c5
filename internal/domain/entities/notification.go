package entities

// NotificationEvent is the lifecycle moment a notification reports.
type NotificationEvent string

// Notification events.
const (
	EventCreated  NotificationEvent = "created"
	EventReviewed NotificationEvent = "reviewed"
)

// NotificationItem summarizes one proposal inside a notification message.
type NotificationItem struct {
	ProposalID string       `json:"proposal_id"`
	Kind       ProposalKind `json:"kind"`
	RecordSlug string       `json:"record_slug"`
	Title      string       `json:"title"`
	Field      string       `json:"field,omitempty"`
	Status     Status       `json:"status"`
	Submitter  Person       `json:"submitter"`
	Reviewer   *Person      `json:"reviewer,omitempty"`
	Notes      string       `json:"notes,omitempty"`
}

// Notification is the payload handed to a Notifier.
type Notification struct {
	Event NotificationEvent  `json:"event"`
	Items []NotificationItem `json:"items"`
}

// SameThreads reports whether two thread id sets are identical, ignoring order.
func SameThreads(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		if seen[id] == 0 {
			return false
		}
		seen[id]--
	}
	return true
}
