// Package entities contains core domain data structures.
package entities

import "time"

// Status is the lifecycle state of a proposal.
type Status string

// Proposal statuses. Every status other than StatusPending is terminal.
const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusModified   Status = "modified"
	StatusSuperseded Status = "superseded"
)

// IsTerminal reports whether the status can no longer change.
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// Decision is a reviewer's verdict on a proposal.
type Decision string

// Reviewer decisions. DecisionModified applies to corrections only.
const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionModified Decision = "modified"
)

// ParseDecision validates a decision string.
func ParseDecision(s string) (Decision, bool) {
	switch Decision(s) {
	case DecisionApproved, DecisionRejected, DecisionModified:
		return Decision(s), true
	default:
		return "", false
	}
}

// Status returns the proposal status a decision transitions to.
func (d Decision) Status() Status {
	switch d {
	case DecisionApproved:
		return StatusApproved
	case DecisionRejected:
		return StatusRejected
	case DecisionModified:
		return StatusModified
	default:
		return ""
	}
}

// Person identifies a user by id and display name.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Transition is the compare-and-swap payload moving a proposal out of pending.
// It is applied only if the stored status is still pending.
type Transition struct {
	To         Status
	Reviewer   Person
	ReviewedAt time.Time
	Notes      string
	// FinalValue is stored only when To is StatusModified.
	FinalValue any
}

// ProposalKind distinguishes the two proposal types.
type ProposalKind string

// Proposal kinds.
const (
	KindCorrection ProposalKind = "correction"
	KindSubmission ProposalKind = "submission"
)

// ParseProposalKind accepts the singular or plural form.
func ParseProposalKind(s string) (ProposalKind, bool) {
	switch s {
	case "correction", "corrections":
		return KindCorrection, true
	case "submission", "submissions":
		return KindSubmission, true
	default:
		return "", false
	}
}
