package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// Review results reported to metrics.
const (
	ReviewOK         = "ok"
	ReviewDependency = "dependency_error"
)

// ReviewService transitions a single pending proposal and applies its side effects.
//
// The status transition is a compare-and-set on pending and is the only
// serialization point: once it succeeds the proposal stays reviewed, and the
// merge, audit, counter and supersession writes that follow are attempted in order.
// A merge or audit failure is returned wrapped in ErrDependency together with the
// committed outcome.
type ReviewService struct {
	proposals  ports.ProposalStore
	guard      *EligibilityGuard
	merge      *MergeEngine
	ledger     *AuditLedger
	resolver   *SupersessionResolver
	counters   ports.Counters
	reconciler *NotificationReconciler
	metrics    ports.Metrics
	log        *zap.Logger
	now        func() time.Time
}

// ReviewDeps groups the collaborators of a ReviewService.
type ReviewDeps struct {
	Proposals  ports.ProposalStore
	Guard      *EligibilityGuard
	Merge      *MergeEngine
	Ledger     *AuditLedger
	Resolver   *SupersessionResolver
	Counters   ports.Counters
	Reconciler *NotificationReconciler
	Metrics    ports.Metrics
	Logger     *zap.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(deps ReviewDeps) *ReviewService {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{
		proposals:  deps.Proposals,
		guard:      deps.Guard,
		merge:      deps.Merge,
		ledger:     deps.Ledger,
		resolver:   deps.Resolver,
		counters:   deps.Counters,
		reconciler: deps.Reconciler,
		metrics:    metrics,
		log:        log,
		now:        time.Now,
	}
}

// Review reviews one proposal and schedules its notification.
func (s *ReviewService) Review(ctx context.Context, kind entities.ProposalKind, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	outcome, err := s.review(ctx, kind, actor, req)
	if outcome != nil && s.reconciler != nil {
		s.reconciler.NotifyReviewed([]*entities.ReviewOutcome{outcome}, nil)
	}
	return outcome, err
}

// ReviewCorrection reviews one correction.
func (s *ReviewService) ReviewCorrection(ctx context.Context, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	return s.Review(ctx, entities.KindCorrection, actor, req)
}

// ReviewSubmission reviews one submission.
func (s *ReviewService) ReviewSubmission(ctx context.Context, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	return s.Review(ctx, entities.KindSubmission, actor, req)
}

// review performs the review without notifying. A non-nil outcome means the
// transition committed, even when err is also non-nil.
func (s *ReviewService) review(ctx context.Context, kind entities.ProposalKind, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	var (
		outcome *entities.ReviewOutcome
		err     error
	)
	switch kind {
	case entities.KindCorrection:
		outcome, err = s.reviewCorrection(ctx, actor, req)
	case entities.KindSubmission:
		outcome, err = s.reviewSubmission(ctx, actor, req)
	default:
		err = fmt.Errorf("%w: unknown proposal kind %q", entities.ErrValidation, kind)
	}

	result := ReviewOK
	switch {
	case err == nil:
	case outcome != nil:
		result = ReviewDependency
	default:
		result = entities.ErrorKind(err)
	}
	s.metrics.ObserveReview(kind, req.Decision, result)
	return outcome, err
}

func validateRequest(kind entities.ProposalKind, req entities.ReviewRequest) error {
	if strings.TrimSpace(req.ProposalID) == "" {
		return fmt.Errorf("%w: proposal id is required", entities.ErrValidation)
	}
	if _, ok := entities.ParseDecision(string(req.Decision)); !ok {
		return fmt.Errorf("%w: invalid decision %q", entities.ErrValidation, req.Decision)
	}
	if req.Decision == entities.DecisionModified {
		if kind != entities.KindCorrection {
			return fmt.Errorf("%w: %s cannot be modified", entities.ErrValidation, kind)
		}
		if req.FinalValue == nil {
			return fmt.Errorf("%w: final value is required for a modified decision", entities.ErrValidation)
		}
	}
	return nil
}

func (s *ReviewService) reviewCorrection(ctx context.Context, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	if err := validateRequest(entities.KindCorrection, req); err != nil {
		return nil, err
	}

	c, err := s.proposals.FindCorrection(ctx, req.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("finding correction: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: correction %s", entities.ErrNotFound, req.ProposalID)
	}
	if err := s.guard.CanReview(actor, c.Submitter.ID); err != nil {
		return nil, err
	}
	if c.Status != entities.StatusPending {
		return nil, fmt.Errorf("%w: correction %s is %s", entities.ErrConflict, c.ID, c.Status)
	}

	var finalValue any
	if req.Decision == entities.DecisionModified {
		finalValue, err = entities.NormalizeValue(c.Field, req.FinalValue)
		if err != nil {
			return nil, err
		}
		if finalValue == nil {
			return nil, fmt.Errorf("%w: final value cannot clear %q, approve a clearing correction instead", entities.ErrValidation, c.Field)
		}
	}

	// Accepted values need a record to land on. Rejections touch only the proposal.
	if req.Decision != entities.DecisionRejected {
		if err := s.merge.CheckRecord(ctx, c.RecordSlug); err != nil {
			return nil, err
		}
	}

	reviewer := actor.Person()
	at := s.now()
	t := entities.Transition{
		To:         req.Decision.Status(),
		Reviewer:   reviewer,
		ReviewedAt: at,
		Notes:      strings.TrimSpace(req.Notes),
		FinalValue: finalValue,
	}
	ok, err := s.proposals.TransitionCorrection(ctx, c.ID, t)
	if err != nil {
		return nil, fmt.Errorf("transitioning correction %s: %w", c.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: correction %s", entities.ErrConflict, c.ID)
	}

	c.Status = t.To
	c.Reviewer = &reviewer
	c.ReviewedAt = &at
	c.ReviewNotes = t.Notes
	c.FinalValue = finalValue
	outcome := &entities.ReviewOutcome{Kind: entities.KindCorrection, Correction: c}

	var errs []error
	counter := entities.CounterCorrectionsRejected
	if c.Status != entities.StatusRejected {
		counter = entities.CounterCorrectionsApproved
		merged, err := s.merge.MergeCorrection(ctx, c)
		if err != nil {
			errs = append(errs, err)
		} else if err := s.ledger.RecordCorrection(ctx, c, merged.Before[c.Field]); err != nil {
			errs = append(errs, err)
		}
	}
	s.increment(ctx, c.Submitter.ID, counter)

	s.log.Info("correction reviewed",
		zap.String("correction_id", c.ID),
		zap.String("record", c.RecordSlug),
		zap.String("field", c.Field),
		zap.String("status", string(c.Status)),
		zap.String("reviewer", reviewer.ID))

	if err := errors.Join(errs...); err != nil {
		s.log.Error("correction side effects failed", zap.String("correction_id", c.ID), zap.Error(err))
		return outcome, fmt.Errorf("%w: %w", entities.ErrDependency, err)
	}
	return outcome, nil
}

func (s *ReviewService) reviewSubmission(ctx context.Context, actor entities.Actor, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	if err := validateRequest(entities.KindSubmission, req); err != nil {
		return nil, err
	}

	sub, err := s.proposals.FindSubmission(ctx, req.ProposalID)
	if err != nil {
		return nil, fmt.Errorf("finding submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: submission %s", entities.ErrNotFound, req.ProposalID)
	}
	if err := s.guard.CanReview(actor, sub.Submitter.ID); err != nil {
		return nil, err
	}
	if sub.Status != entities.StatusPending {
		return nil, fmt.Errorf("%w: submission %s is %s", entities.ErrConflict, sub.ID, sub.Status)
	}

	reviewer := actor.Person()
	at := s.now()
	t := entities.Transition{
		To:         req.Decision.Status(),
		Reviewer:   reviewer,
		ReviewedAt: at,
		Notes:      strings.TrimSpace(req.Notes),
	}
	ok, err := s.proposals.TransitionSubmission(ctx, sub.ID, t)
	if err != nil {
		return nil, fmt.Errorf("transitioning submission %s: %w", sub.ID, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: submission %s", entities.ErrConflict, sub.ID)
	}

	sub.Status = t.To
	sub.Reviewer = &reviewer
	sub.ReviewedAt = &at
	sub.ReviewNotes = t.Notes
	outcome := &entities.ReviewOutcome{Kind: entities.KindSubmission, Submission: sub}

	var errs []error
	counter := entities.CounterSubmissionsRejected
	if sub.Status == entities.StatusApproved {
		counter = entities.CounterSubmissionsApproved
		merged, err := s.merge.MergeSubmission(ctx, sub)
		if err != nil {
			errs = append(errs, err)
		} else if err := s.ledger.RecordSubmission(ctx, sub, merged.Before); err != nil {
			errs = append(errs, err)
		}

		retired, err := s.resolver.Resolve(ctx, sub, reviewer, at)
		if err != nil {
			s.log.Warn("superseding sibling submissions", zap.String("submission_id", sub.ID), zap.Error(err))
		}
		outcome.Superseded = retired
	}
	s.increment(ctx, sub.Submitter.ID, counter)

	s.log.Info("submission reviewed",
		zap.String("submission_id", sub.ID),
		zap.String("record", sub.RecordSlug),
		zap.String("status", string(sub.Status)),
		zap.Int("superseded", len(outcome.Superseded)),
		zap.String("reviewer", reviewer.ID))

	if err := errors.Join(errs...); err != nil {
		s.log.Error("submission side effects failed", zap.String("submission_id", sub.ID), zap.Error(err))
		return outcome, fmt.Errorf("%w: %w", entities.ErrDependency, err)
	}
	return outcome, nil
}

func (s *ReviewService) increment(ctx context.Context, userID string, counter entities.Counter) {
	if s.counters == nil || userID == "" {
		return
	}
	if err := s.counters.Increment(ctx, userID, counter); err != nil {
		s.log.Warn("incrementing contribution counter",
			zap.String("user_id", userID),
			zap.String("counter", string(counter)),
			zap.Error(err))
	}
}
