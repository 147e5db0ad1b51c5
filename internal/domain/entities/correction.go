package entities

import "time"

// Correction proposes changing one field of one catalog record.
// OldValue is a snapshot taken at submit time and never changes afterwards.
type Correction struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id,omitempty"`
	RecordID    string    `json:"record_id"`
	RecordSlug  string    `json:"record_slug"`
	RecordTitle string    `json:"record_title"`
	Submitter   Person    `json:"submitter"`
	SubmittedAt time.Time `json:"submitted_at"`
	Field       string    `json:"field"`
	OldValue    any       `json:"old_value"`
	NewValue    any       `json:"new_value"`
	Reason      string    `json:"reason,omitempty"`
	Status      Status    `json:"status"`

	Reviewer    *Person    `json:"reviewer,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes string     `json:"review_notes,omitempty"`
	// FinalValue is present iff Status is StatusModified.
	FinalValue any `json:"final_value,omitempty"`

	NotificationThreads []string `json:"notification_threads,omitempty"`
}

// AppliedValue returns the value a reviewed correction merged into the catalog.
func (c *Correction) AppliedValue() any {
	if c.Status == StatusModified {
		return c.FinalValue
	}
	return c.NewValue
}
