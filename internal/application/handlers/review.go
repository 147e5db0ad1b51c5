package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
	"github.com/ersonp/catalog-review/internal/infrastructure/parsers"
)

// ReviewHandler handles single and batch review decisions.
type ReviewHandler struct {
	users   *services.UserService
	reviews *services.ReviewService
	batch   *services.BatchReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(users *services.UserService, reviews *services.ReviewService, batch *services.BatchReviewService) *ReviewHandler {
	return &ReviewHandler{
		users:   users,
		reviews: reviews,
		batch:   batch,
	}
}

// HandleReview applies one decision. When side effects fail after the status
// committed, both the outcome and an ErrDependency error are returned.
func (h *ReviewHandler) HandleReview(ctx context.Context, actorID, kind string, req entities.ReviewRequest) (*entities.ReviewOutcome, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	actor, err := h.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return h.reviews.Review(ctx, k, actor, req)
}

// HandleBatch applies many decisions of one kind, best-effort.
func (h *ReviewHandler) HandleBatch(ctx context.Context, actorID, kind string, items []entities.ReviewRequest) (*entities.BatchResult, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	actor, err := h.users.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return h.batch.Review(ctx, k, actor, items)
}

// BatchFileOptions controls batch file parsing.
type BatchFileOptions struct {
	Format string // "json", "yaml", "csv", or "auto"
}

// HandleBatchFile parses a decision file and applies it as one batch.
func (h *ReviewHandler) HandleBatchFile(ctx context.Context, actorID, kind, filePath string, opts BatchFileOptions) (*entities.BatchResult, error) {
	var parser parsers.Parser
	if opts.Format == "" || opts.Format == "auto" {
		parser = parsers.ForFile(filePath)
	} else {
		parser = parsers.ForFormat(opts.Format)
	}

	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported format for file: %s", entities.ErrValidation, filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	decisions, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing file: %v", entities.ErrValidation, err)
	}

	return h.HandleBatch(ctx, actorID, kind, parsers.Requests(decisions))
}
