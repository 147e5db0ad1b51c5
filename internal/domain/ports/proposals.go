// Package ports defines interfaces for external service communication.
package ports

import (
	"context"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// ProposalStore persists corrections and submissions.
// Find methods return (nil, nil) when the proposal does not exist.
type ProposalStore interface {
	// SaveCorrection inserts a new correction.
	SaveCorrection(ctx context.Context, c *entities.Correction) error

	// FindCorrection finds a correction by ID.
	FindCorrection(ctx context.Context, id string) (*entities.Correction, error)

	// ListCorrections lists corrections, newest first. An empty status lists all.
	ListCorrections(ctx context.Context, status entities.Status, limit int) ([]entities.Correction, error)

	// TransitionCorrection moves a correction out of pending.
	// It returns false without mutating anything when the correction is no longer pending.
	TransitionCorrection(ctx context.Context, id string, t entities.Transition) (bool, error)

	// SaveSubmission inserts a new submission.
	SaveSubmission(ctx context.Context, s *entities.Submission) error

	// FindSubmission finds a submission by ID.
	FindSubmission(ctx context.Context, id string) (*entities.Submission, error)

	// ListSubmissions lists submissions, newest first. An empty status lists all.
	ListSubmissions(ctx context.Context, status entities.Status, limit int) ([]entities.Submission, error)

	// FindPendingSubmissionsBySlug finds pending submissions targeting a record slug.
	FindPendingSubmissionsBySlug(ctx context.Context, slug string) ([]entities.Submission, error)

	// TransitionSubmission moves a submission out of pending.
	// It returns false without mutating anything when the submission is no longer pending.
	TransitionSubmission(ctx context.Context, id string, t entities.Transition) (bool, error)

	// SetNotificationThreads replaces the notification thread ids of a proposal.
	SetNotificationThreads(ctx context.Context, kind entities.ProposalKind, id string, threads []string) error
}
