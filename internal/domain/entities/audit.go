package entities

import "time"

// ChangeKind distinguishes setting a field from clearing it.
type ChangeKind string

// Ledger change kinds.
const (
	ChangeSet   ChangeKind = "set"
	ChangeClear ChangeKind = "clear"
)

// LedgerEntry records one applied field change. It carries enough data to reconstruct
// who changed what, from what, to what, and under whose review.
type LedgerEntry struct {
	ID           string     `json:"id"`
	RecordSlug   string     `json:"record_slug"`
	Field        string     `json:"field"`
	Before       any        `json:"before,omitempty"`
	After        any        `json:"after,omitempty"`
	Change       ChangeKind `json:"change"`
	Author       Person     `json:"author"`
	Reviewer     Person     `json:"reviewer"`
	Reason       string     `json:"reason,omitempty"`
	ReviewNotes  string     `json:"review_notes,omitempty"`
	CorrectionID string     `json:"correction_id,omitempty"`
	SubmissionID string     `json:"submission_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
