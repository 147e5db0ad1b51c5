package services

import (
	"fmt"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// EligibilityGuard decides whether an actor may submit or review a proposal.
type EligibilityGuard struct {
	exempt map[string]struct{}
}

// NewEligibilityGuard creates a guard. exemptIDs are developer accounts allowed
// to review their own proposals.
func NewEligibilityGuard(exemptIDs []string) *EligibilityGuard {
	exempt := make(map[string]struct{}, len(exemptIDs))
	for _, id := range exemptIDs {
		if id = strings.TrimSpace(id); id != "" {
			exempt[id] = struct{}{}
		}
	}
	return &EligibilityGuard{exempt: exempt}
}

// IsExempt reports whether the user id is on the self-review allow-list.
func (g *EligibilityGuard) IsExempt(userID string) bool {
	_, ok := g.exempt[userID]
	return ok
}

// CanSubmit returns an ErrForbidden error when the actor may not create proposals.
func (g *EligibilityGuard) CanSubmit(actor entities.Actor) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: unauthenticated actor", entities.ErrForbidden)
	}
	if actor.Status.IsBlocked() {
		return fmt.Errorf("%w: account is %s", entities.ErrForbidden, actor.Status)
	}
	return nil
}

// CanReview returns an ErrForbidden error when the actor may not review a proposal
// authored by authorID.
func (g *EligibilityGuard) CanReview(actor entities.Actor, authorID string) error {
	if err := g.CanReviewAny(actor); err != nil {
		return err
	}
	if actor.ID == authorID && !g.IsExempt(actor.ID) {
		return fmt.Errorf("%w: cannot review your own proposal", entities.ErrForbidden)
	}
	return nil
}

// CanReviewAny checks the role and account status without a specific proposal.
func (g *EligibilityGuard) CanReviewAny(actor entities.Actor) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: unauthenticated actor", entities.ErrForbidden)
	}
	if !actor.Role.CanReview() {
		return fmt.Errorf("%w: role %q cannot review", entities.ErrForbidden, actor.Role)
	}
	if actor.Status.IsBlocked() {
		return fmt.Errorf("%w: account is %s", entities.ErrForbidden, actor.Status)
	}
	return nil
}
