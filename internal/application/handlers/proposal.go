package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
	"github.com/ersonp/catalog-review/internal/infrastructure/parsers"
)

// DefaultListLimit caps proposal listings when no limit is given.
const DefaultListLimit = 50

// ProposalHandler handles creating and reading corrections and submissions.
type ProposalHandler struct {
	users     *services.UserService
	proposals *services.ProposalService
}

// NewProposalHandler creates a new proposal handler.
func NewProposalHandler(users *services.UserService, proposals *services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		users:     users,
		proposals: proposals,
	}
}

// ListResult contains proposals of one kind.
type ListResult struct {
	Kind        entities.ProposalKind `json:"kind"`
	Corrections []entities.Correction `json:"corrections,omitempty"`
	Submissions []entities.Submission `json:"submissions,omitempty"`
}

// Count returns the number of listed proposals.
func (r *ListResult) Count() int {
	return len(r.Corrections) + len(r.Submissions)
}

// GetResult contains a single proposal.
type GetResult struct {
	Kind       entities.ProposalKind `json:"kind"`
	Correction *entities.Correction  `json:"correction,omitempty"`
	Submission *entities.Submission  `json:"submission,omitempty"`
}

// HandleCorrect files one correction per changed field on behalf of actorID.
func (h *ProposalHandler) HandleCorrect(ctx context.Context, actorID string, in services.CorrectionInput) ([]entities.Correction, error) {
	actor, err := h.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return h.proposals.SubmitCorrections(ctx, actor, in)
}

// HandleSubmit files a submission on behalf of actorID.
func (h *ProposalHandler) HandleSubmit(ctx context.Context, actorID string, in services.SubmissionInput) (*entities.Submission, error) {
	actor, err := h.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return h.proposals.SubmitSubmission(ctx, actor, in)
}

// HandleSubmitFile reads a JSON or YAML submission document and files it.
// A non-empty slug overrides the slug in the file.
func (h *ProposalHandler) HandleSubmitFile(ctx context.Context, actorID, filePath, slug string) (*entities.Submission, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	raw, err := parsers.ParseSubmission(file, parsers.SubmissionFormat(filePath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}
	if slug != "" {
		raw.RecordSlug = slug
	}

	return h.HandleSubmit(ctx, actorID, services.SubmissionInput{
		RecordSlug: raw.RecordSlug,
		Title:      raw.Title,
		Data:       raw.Data,
		Notes:      raw.Notes,
	})
}

// HandleList lists proposals of the given kind. An empty status lists all.
func (h *ProposalHandler) HandleList(ctx context.Context, kind, status string, limit int) (*ListResult, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	result := &ListResult{Kind: k}
	switch k {
	case entities.KindCorrection:
		result.Corrections, err = h.proposals.ListCorrections(ctx, st, limit)
	case entities.KindSubmission:
		result.Submissions, err = h.proposals.ListSubmissions(ctx, st, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", k, err)
	}
	return result, nil
}

// HandleGet returns one proposal by kind and id.
func (h *ProposalHandler) HandleGet(ctx context.Context, kind, id string) (*GetResult, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}

	result := &GetResult{Kind: k}
	switch k {
	case entities.KindCorrection:
		result.Correction, err = h.proposals.GetCorrection(ctx, id)
	case entities.KindSubmission:
		result.Submission, err = h.proposals.GetSubmission(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func parseKind(s string) (entities.ProposalKind, error) {
	k, ok := entities.ParseProposalKind(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return "", fmt.Errorf("%w: invalid proposal kind %q (valid: correction, submission)", entities.ErrValidation, s)
	}
	return k, nil
}

func parseStatus(s string) (entities.Status, error) {
	st := entities.Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case "", entities.StatusPending, entities.StatusApproved, entities.StatusRejected,
		entities.StatusModified, entities.StatusSuperseded:
		return st, nil
	default:
		return "", fmt.Errorf("%w: invalid status %q", entities.ErrValidation, s)
	}
}
