package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// BatchReviewService reviews many proposals of one kind, best-effort.
type BatchReviewService struct {
	reviews    *ReviewService
	proposals  ports.ProposalStore
	guard      *EligibilityGuard
	reconciler *NotificationReconciler
	metrics    ports.Metrics
	log        *zap.Logger
}

// NewBatchReviewService creates a new batch review service.
func NewBatchReviewService(reviews *ReviewService, proposals ports.ProposalStore, guard *EligibilityGuard, reconciler *NotificationReconciler, metrics ports.Metrics, log *zap.Logger) *BatchReviewService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &BatchReviewService{
		reviews:    reviews,
		proposals:  proposals,
		guard:      guard,
		reconciler: reconciler,
		metrics:    metrics,
		log:        log,
	}
}

// Review applies each item independently. Items that fail validation, are missing,
// already reviewed or forbidden are skipped with a warning. Items whose transition
// committed but whose side effects failed are not counted as processed.
// The returned error is non-nil only when the whole request is invalid.
func (s *BatchReviewService) Review(ctx context.Context, kind entities.ProposalKind, actor entities.Actor, items []entities.ReviewRequest) (*entities.BatchResult, error) {
	if kind != entities.KindCorrection && kind != entities.KindSubmission {
		return nil, fmt.Errorf("%w: unknown proposal kind %q", entities.ErrValidation, kind)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: batch has no items", entities.ErrValidation)
	}
	if err := s.guard.CanReviewAny(actor); err != nil {
		return nil, err
	}

	shared := s.sharedThreads(ctx, kind, items)

	result := &entities.BatchResult{Total: len(items)}
	outcomes := make([]*entities.ReviewOutcome, 0, len(items))
	for i, item := range items {
		outcome, err := s.reviews.review(ctx, kind, actor, item)
		if outcome != nil {
			outcomes = append(outcomes, outcome)
		}
		switch {
		case err == nil:
			result.Processed++
		case entities.IsSkippable(err):
			reason := entities.ErrorKind(err)
			s.log.Warn("skipping batch item",
				zap.Int("index", i),
				zap.String("proposal_id", item.ProposalID),
				zap.String("reason", reason),
				zap.Error(err))
			s.metrics.ObserveBatchSkip(reason)
			result.Skipped = append(result.Skipped, entities.SkippedItem{
				Index:      i,
				ProposalID: item.ProposalID,
				Reason:     err.Error(),
				Kind:       reason,
			})
		default:
			s.log.Error("batch item failed",
				zap.Int("index", i),
				zap.String("proposal_id", item.ProposalID),
				zap.Error(err))
			if errors.Is(err, entities.ErrDependency) {
				s.metrics.ObserveBatchSkip("dependency")
			}
		}
	}

	if s.reconciler != nil {
		s.reconciler.NotifyReviewed(outcomes, shared)
	}

	s.log.Info("batch review finished",
		zap.String("kind", string(kind)),
		zap.Int("processed", result.Processed),
		zap.Int("total", result.Total),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// sharedThreads returns the common thread ids when every item refers to an
// existing proposal of the same non-empty group carrying identical threads.
func (s *BatchReviewService) sharedThreads(ctx context.Context, kind entities.ProposalKind, items []entities.ReviewRequest) []string {
	if len(items) < 2 {
		return nil
	}

	var (
		group   string
		threads []string
	)
	for i, item := range items {
		g, t, ok := s.groupOf(ctx, kind, item.ProposalID)
		if !ok || g == "" || len(t) == 0 {
			return nil
		}
		if i == 0 {
			group, threads = g, t
			continue
		}
		if g != group || !entities.SameThreads(t, threads) {
			return nil
		}
	}
	return threads
}

func (s *BatchReviewService) groupOf(ctx context.Context, kind entities.ProposalKind, id string) (string, []string, bool) {
	if id == "" {
		return "", nil, false
	}
	switch kind {
	case entities.KindCorrection:
		c, err := s.proposals.FindCorrection(ctx, id)
		if err != nil || c == nil {
			return "", nil, false
		}
		return c.GroupID, c.NotificationThreads, true
	default:
		sub, err := s.proposals.FindSubmission(ctx, id)
		if err != nil || sub == nil {
			return "", nil, false
		}
		return sub.GroupID, sub.NotificationThreads, true
	}
}
