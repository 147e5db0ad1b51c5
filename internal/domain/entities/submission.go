package entities

import (
	"sort"
	"time"
)

// Submission proposes a best-effort complete set of fields for one catalog record.
type Submission struct {
	ID           string         `json:"id"`
	GroupID      string         `json:"group_id,omitempty"`
	RecordSlug   string         `json:"record_slug"`
	RecordTitle  string         `json:"record_title"`
	Submitter    Person         `json:"submitter"`
	SubmittedAt  time.Time      `json:"submitted_at"`
	ProposedData map[string]any `json:"proposed_data"`
	Notes        string         `json:"notes,omitempty"`
	Status       Status         `json:"status"`

	Reviewer    *Person    `json:"reviewer,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`

	NotificationThreads []string `json:"notification_threads,omitempty"`
}

// NonEmptyFields returns the sorted names of proposed fields carrying a value.
func (s *Submission) NonEmptyFields() []string {
	fields := make([]string, 0, len(s.ProposedData))
	for name, v := range s.ProposedData {
		if !IsClearValue(v) {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}
