package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// SupersessionResolver retires sibling pending submissions once one is approved.
// Superseded is a neutral outcome: no rejected counter is touched.
type SupersessionResolver struct {
	proposals ports.ProposalStore
	log       *zap.Logger
}

// NewSupersessionResolver creates a new SupersessionResolver.
func NewSupersessionResolver(proposals ports.ProposalStore, log *zap.Logger) *SupersessionResolver {
	return &SupersessionResolver{proposals: proposals, log: log}
}

// Resolve transitions every other pending submission for the accepted submission's
// slug to superseded and returns the ones it retired.
func (r *SupersessionResolver) Resolve(ctx context.Context, accepted *entities.Submission, reviewer entities.Person, at time.Time) ([]entities.Submission, error) {
	siblings, err := r.proposals.FindPendingSubmissionsBySlug(ctx, accepted.RecordSlug)
	if err != nil {
		return nil, fmt.Errorf("finding pending submissions for %s: %w", accepted.RecordSlug, err)
	}

	note := fmt.Sprintf("Superseded by approved submission %s", accepted.ID)
	retired := make([]entities.Submission, 0, len(siblings))
	for i := range siblings {
		sib := siblings[i]
		if sib.ID == accepted.ID {
			continue
		}
		ok, err := r.proposals.TransitionSubmission(ctx, sib.ID, entities.Transition{
			To:         entities.StatusSuperseded,
			Reviewer:   reviewer,
			ReviewedAt: at,
			Notes:      note,
		})
		if err != nil {
			return retired, fmt.Errorf("superseding submission %s: %w", sib.ID, err)
		}
		if !ok {
			// Reviewed concurrently; whatever state it reached stands.
			r.log.Debug("sibling submission no longer pending", zap.String("submission_id", sib.ID))
			continue
		}
		sib.Status = entities.StatusSuperseded
		sib.Reviewer = &reviewer
		reviewedAt := at
		sib.ReviewedAt = &reviewedAt
		sib.ReviewNotes = note
		retired = append(retired, sib)
	}
	return retired, nil
}
