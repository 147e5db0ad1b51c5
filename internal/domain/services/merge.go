package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// MergeResult reports what a merge wrote.
type MergeResult struct {
	Record *entities.Record
	// Before holds the values of the touched fields as read just before the write.
	Before map[string]any
}

// MergeEngine applies accepted values onto canonical catalog records.
type MergeEngine struct {
	catalog ports.CatalogStore
	now     func() time.Time
}

// NewMergeEngine creates a new MergeEngine.
func NewMergeEngine(catalog ports.CatalogStore) *MergeEngine {
	return &MergeEngine{catalog: catalog, now: time.Now}
}

// CheckRecord returns ErrNotFound when no record exists at slug.
func (e *MergeEngine) CheckRecord(ctx context.Context, slug string) error {
	rec, err := e.catalog.FindBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("finding record %s: %w", slug, err)
	}
	if rec == nil {
		return fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
	}
	return nil
}

// MergeCorrection writes a reviewed correction's applied value. The record must exist.
// A clear value removes the field instead of storing an empty placeholder.
func (e *MergeEngine) MergeCorrection(ctx context.Context, c *entities.Correction) (*MergeResult, error) {
	current, err := e.catalog.FindBySlug(ctx, c.RecordSlug)
	if err != nil {
		return nil, fmt.Errorf("finding record %s: %w", c.RecordSlug, err)
	}
	if current == nil {
		return nil, fmt.Errorf("%w: record %q", entities.ErrNotFound, c.RecordSlug)
	}

	kind := entities.UpdateCorrection
	if c.Status == entities.StatusModified {
		kind = entities.UpdateCorrectionModified
	}

	update := entities.RecordUpdate{
		History: entities.HistoryEntry{
			ID:        uuid.New().String(),
			Timestamp: e.now(),
			Submitter: c.Submitter,
			Reviewer:  reviewerOf(c.Reviewer),
			Field:     c.Field,
			Kind:      kind,
			Notes:     c.ReviewNotes,
		},
	}

	value := c.AppliedValue()
	if entities.IsClearValue(value) {
		update.Unset = []string{c.Field}
	} else {
		update.Set = map[string]any{c.Field: value}
	}

	rec, err := e.catalog.UpsertBySlug(ctx, c.RecordSlug, update)
	if err != nil {
		return nil, fmt.Errorf("merging correction %s: %w", c.ID, err)
	}

	return &MergeResult{
		Record: rec,
		Before: map[string]any{c.Field: current.Value(c.Field)},
	}, nil
}

// MergeSubmission upserts every non-empty proposed field of an approved submission
// and re-evaluates the ready flag on the merged result.
func (e *MergeEngine) MergeSubmission(ctx context.Context, s *entities.Submission) (*MergeResult, error) {
	current, err := e.catalog.FindBySlug(ctx, s.RecordSlug)
	if err != nil {
		return nil, fmt.Errorf("finding record %s: %w", s.RecordSlug, err)
	}

	fields := s.NonEmptyFields()
	set := make(map[string]any, len(fields))
	before := make(map[string]any, len(fields))
	for _, f := range fields {
		set[f] = s.ProposedData[f]
		before[f] = current.Value(f)
	}

	update := entities.RecordUpdate{
		Set: set,
		History: entities.HistoryEntry{
			ID:        uuid.New().String(),
			Timestamp: e.now(),
			Submitter: s.Submitter,
			Reviewer:  reviewerOf(s.Reviewer),
			Fields:    fields,
			Kind:      entities.UpdateSubmission,
			Notes:     s.ReviewNotes,
		},
		Upsert:        true,
		EvaluateReady: true,
	}

	rec, err := e.catalog.UpsertBySlug(ctx, s.RecordSlug, update)
	if err != nil {
		return nil, fmt.Errorf("merging submission %s: %w", s.ID, err)
	}
	return &MergeResult{Record: rec, Before: before}, nil
}
