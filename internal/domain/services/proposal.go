package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/ports"
)

// FieldChange is one requested field edit inside a correction request.
type FieldChange struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// CorrectionInput creates one correction per change against an existing record.
type CorrectionInput struct {
	RecordSlug string        `json:"record_slug" yaml:"record_slug"`
	Changes    []FieldChange `json:"changes" yaml:"changes"`
	Reason     string        `json:"reason" yaml:"reason"`
}

// SubmissionInput proposes field values for a possibly new record.
type SubmissionInput struct {
	RecordSlug string         `json:"record_slug" yaml:"record_slug"`
	Title      string         `json:"title" yaml:"title"`
	Data       map[string]any `json:"data" yaml:"data"`
	Notes      string         `json:"notes" yaml:"notes"`
}

// ProposalService creates proposals and lists them for the review queue.
type ProposalService struct {
	proposals  ports.ProposalStore
	catalog    ports.CatalogStore
	guard      *EligibilityGuard
	reconciler *NotificationReconciler
	log        *zap.Logger
	now        func() time.Time
}

// NewProposalService creates a new proposal service.
func NewProposalService(proposals ports.ProposalStore, catalog ports.CatalogStore, guard *EligibilityGuard, reconciler *NotificationReconciler, log *zap.Logger) *ProposalService {
	return &ProposalService{
		proposals:  proposals,
		catalog:    catalog,
		guard:      guard,
		reconciler: reconciler,
		log:        log,
		now:        time.Now,
	}
}

// SubmitCorrections validates every change before saving any of them. Corrections
// created together share a group id and a notification thread.
func (s *ProposalService) SubmitCorrections(ctx context.Context, actor entities.Actor, in CorrectionInput) ([]entities.Correction, error) {
	if err := s.guard.CanSubmit(actor); err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(in.RecordSlug)
	if slug == "" {
		return nil, fmt.Errorf("%w: record slug is required", entities.ErrValidation)
	}
	if len(in.Changes) == 0 {
		return nil, fmt.Errorf("%w: at least one field change is required", entities.ErrValidation)
	}

	rec, err := s.catalog.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("finding record %s: %w", slug, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
	}

	seen := make(map[string]bool, len(in.Changes))
	groupID := uuid.New().String()
	now := s.now()
	created := make([]entities.Correction, 0, len(in.Changes))
	for _, ch := range in.Changes {
		field := strings.TrimSpace(ch.Field)
		if seen[field] {
			return nil, fmt.Errorf("%w: field %q appears more than once", entities.ErrValidation, field)
		}
		seen[field] = true

		value, err := entities.NormalizeValue(field, ch.Value)
		if err != nil {
			return nil, err
		}
		old := rec.Value(field)
		if entities.ValuesEqual(old, value) {
			return nil, fmt.Errorf("%w: field %q already has that value", entities.ErrValidation, field)
		}
		created = append(created, entities.Correction{
			ID:          uuid.New().String(),
			GroupID:     groupID,
			RecordID:    rec.ID,
			RecordSlug:  rec.Slug,
			RecordTitle: rec.Title(),
			Submitter:   actor.Person(),
			SubmittedAt: now,
			Field:       field,
			OldValue:    old,
			NewValue:    value,
			Reason:      strings.TrimSpace(in.Reason),
			Status:      entities.StatusPending,
		})
	}

	refs := make([]ProposalRef, 0, len(created))
	items := make([]entities.NotificationItem, 0, len(created))
	for i := range created {
		if err := s.proposals.SaveCorrection(ctx, &created[i]); err != nil {
			return created[:i], fmt.Errorf("saving correction: %w", err)
		}
		refs = append(refs, ProposalRef{Kind: entities.KindCorrection, ID: created[i].ID})
		items = append(items, CorrectionItem(&created[i]))
	}

	s.log.Info("corrections submitted",
		zap.String("record", slug),
		zap.String("group_id", groupID),
		zap.Int("count", len(created)),
		zap.String("submitter", actor.ID))

	if s.reconciler != nil {
		s.reconciler.NotifyCreated(refs, items)
	}
	return created, nil
}

// SubmitSubmission stores a pending submission. The slug defaults to the slugified
// title; blank values are dropped and at least one field must remain.
func (s *ProposalService) SubmitSubmission(ctx context.Context, actor entities.Actor, in SubmissionInput) (*entities.Submission, error) {
	if err := s.guard.CanSubmit(actor); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		if t, ok := in.Data[entities.FieldTitle].(string); ok {
			title = strings.TrimSpace(t)
		}
	}
	slug := strings.TrimSpace(in.RecordSlug)
	if slug == "" {
		slug = entities.Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: a record slug or title is required", entities.ErrValidation)
	}

	data := make(map[string]any, len(in.Data)+1)
	for field, raw := range in.Data {
		value, err := entities.NormalizeValue(field, raw)
		if err != nil {
			return nil, err
		}
		if value != nil {
			data[field] = value
		}
	}
	if _, ok := data[entities.FieldTitle]; !ok && title != "" {
		data[entities.FieldTitle] = title
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: submission has no non-empty fields", entities.ErrValidation)
	}
	if title == "" {
		title = slug
	}

	sub := &entities.Submission{
		ID:           uuid.New().String(),
		GroupID:      uuid.New().String(),
		RecordSlug:   slug,
		RecordTitle:  title,
		Submitter:    actor.Person(),
		SubmittedAt:  s.now(),
		ProposedData: data,
		Notes:        strings.TrimSpace(in.Notes),
		Status:       entities.StatusPending,
	}
	if err := s.proposals.SaveSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("saving submission: %w", err)
	}

	s.log.Info("submission created",
		zap.String("submission_id", sub.ID),
		zap.String("record", slug),
		zap.Int("fields", len(data)),
		zap.String("submitter", actor.ID))

	if s.reconciler != nil {
		s.reconciler.NotifyCreated(
			[]ProposalRef{{Kind: entities.KindSubmission, ID: sub.ID}},
			[]entities.NotificationItem{SubmissionItem(sub)},
		)
	}
	return sub, nil
}

// GetCorrection returns a correction or an ErrNotFound error.
func (s *ProposalService) GetCorrection(ctx context.Context, id string) (*entities.Correction, error) {
	c, err := s.proposals.FindCorrection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding correction: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: correction %s", entities.ErrNotFound, id)
	}
	return c, nil
}

// GetSubmission returns a submission or an ErrNotFound error.
func (s *ProposalService) GetSubmission(ctx context.Context, id string) (*entities.Submission, error) {
	sub, err := s.proposals.FindSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding submission: %w", err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%w: submission %s", entities.ErrNotFound, id)
	}
	return sub, nil
}

// ListCorrections lists corrections, optionally filtered by status.
func (s *ProposalService) ListCorrections(ctx context.Context, status entities.Status, limit int) ([]entities.Correction, error) {
	return s.proposals.ListCorrections(ctx, status, limit)
}

// ListSubmissions lists submissions, optionally filtered by status.
func (s *ProposalService) ListSubmissions(ctx context.Context, status entities.Status, limit int) ([]entities.Submission, error) {
	return s.proposals.ListSubmissions(ctx, status, limit)
}

// GetRecord returns a catalog record or an ErrNotFound error.
func (s *ProposalService) GetRecord(ctx context.Context, slug string) (*entities.Record, error) {
	rec, err := s.catalog.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("finding record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
	}
	return rec, nil
}
