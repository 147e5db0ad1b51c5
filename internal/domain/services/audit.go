package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// AuditLedger appends one entry per applied field change.
type AuditLedger struct {
	store ports.AuditStore
	now   func() time.Time
}

// NewAuditLedger creates a new AuditLedger.
func NewAuditLedger(store ports.AuditStore) *AuditLedger {
	return &AuditLedger{store: store, now: time.Now}
}

// RecordCorrection appends the ledger entry for a reviewed, merged correction.
func (l *AuditLedger) RecordCorrection(ctx context.Context, c *entities.Correction, before any) error {
	after := c.AppliedValue()
	entry := &entities.LedgerEntry{
		ID:           uuid.New().String(),
		RecordSlug:   c.RecordSlug,
		Field:        c.Field,
		Before:       before,
		After:        after,
		Change:       changeKind(after),
		Author:       c.Submitter,
		Reviewer:     reviewerOf(c.Reviewer),
		Reason:       c.Reason,
		ReviewNotes:  c.ReviewNotes,
		CorrectionID: c.ID,
		CreatedAt:    l.now(),
	}
	if err := l.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("appending ledger entry for correction %s: %w", c.ID, err)
	}
	return nil
}

// RecordSubmission appends one entry per field a merged submission applied.
// Every field is attempted; failures are joined.
func (l *AuditLedger) RecordSubmission(ctx context.Context, s *entities.Submission, before map[string]any) error {
	now := l.now()
	var errs []error
	for _, field := range s.NonEmptyFields() {
		entry := &entities.LedgerEntry{
			ID:           uuid.New().String(),
			RecordSlug:   s.RecordSlug,
			Field:        field,
			Before:       before[field],
			After:        s.ProposedData[field],
			Change:       entities.ChangeSet,
			Author:       s.Submitter,
			Reviewer:     reviewerOf(s.Reviewer),
			Reason:       s.Notes,
			ReviewNotes:  s.ReviewNotes,
			SubmissionID: s.ID,
			CreatedAt:    now,
		}
		if err := l.store.Append(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("appending ledger entry for %s.%s: %w", s.ID, field, err))
		}
	}
	return errors.Join(errs...)
}

// ForRecord returns a record's ledger entries, oldest first.
func (l *AuditLedger) ForRecord(ctx context.Context, slug string) ([]entities.LedgerEntry, error) {
	return l.store.QueryByRecord(ctx, slug)
}

// Recent returns the most recent ledger entries across all records.
func (l *AuditLedger) Recent(ctx context.Context, limit int) ([]entities.LedgerEntry, error) {
	return l.store.QueryAll(ctx, limit)
}

func changeKind(after any) entities.ChangeKind {
	if entities.IsClearValue(after) {
		return entities.ChangeClear
	}
	return entities.ChangeSet
}

func reviewerOf(p *entities.Person) entities.Person {
	if p == nil {
		return entities.Person{}
	}
	return *p
}
