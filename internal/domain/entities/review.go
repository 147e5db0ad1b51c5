package entities

// ReviewRequest is a single reviewer decision on one proposal.
type ReviewRequest struct {
	ProposalID string   `json:"proposal_id" yaml:"proposal_id"`
	Decision   Decision `json:"decision" yaml:"decision"`
	Notes      string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	// FinalValue is required when Decision is DecisionModified.
	FinalValue any `json:"final_value,omitempty" yaml:"final_value,omitempty"`
}

// ReviewOutcome is the committed result of one review.
type ReviewOutcome struct {
	Kind       ProposalKind `json:"kind"`
	Correction *Correction  `json:"correction,omitempty"`
	Submission *Submission  `json:"submission,omitempty"`
	// Superseded lists sibling submissions retired by this approval.
	Superseded []Submission `json:"superseded,omitempty"`
}

// ProposalID returns the reviewed proposal's id.
func (o *ReviewOutcome) ProposalID() string {
	if o.Correction != nil {
		return o.Correction.ID
	}
	if o.Submission != nil {
		return o.Submission.ID
	}
	return ""
}

// Threads returns the reviewed proposal's notification thread ids.
func (o *ReviewOutcome) Threads() []string {
	if o.Correction != nil {
		return o.Correction.NotificationThreads
	}
	if o.Submission != nil {
		return o.Submission.NotificationThreads
	}
	return nil
}

// SkippedItem explains why a batch item was not processed.
type SkippedItem struct {
	Index      int    `json:"index"`
	ProposalID string `json:"proposal_id"`
	Reason     string `json:"reason"`
	Kind       string `json:"kind"`
}

// BatchResult summarizes a batch review.
type BatchResult struct {
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	Skipped   []SkippedItem `json:"skipped,omitempty"`
}
