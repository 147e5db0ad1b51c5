package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/catalog-review/internal/domain/entities"
	"github.com/ersonp/catalog-review/internal/domain/services"
)

// DefaultAuditLimit caps the global audit listing when no limit is given.
const DefaultAuditLimit = 100

// CatalogHandler handles read access to catalog records.
type CatalogHandler struct {
	proposals *services.ProposalService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(proposals *services.ProposalService) *CatalogHandler {
	return &CatalogHandler{proposals: proposals}
}

// HandleShow returns the record with the given slug.
func (h *CatalogHandler) HandleShow(ctx context.Context, slug string) (*entities.Record, error) {
	slug = entities.Slugify(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: record slug is required", entities.ErrValidation)
	}
	return h.proposals.GetRecord(ctx, slug)
}

// AuditHandler handles read access to the audit ledger.
type AuditHandler struct {
	ledger *services.AuditLedger
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(ledger *services.AuditLedger) *AuditHandler {
	return &AuditHandler{ledger: ledger}
}

// AuditResult contains ledger entries, oldest first for a record and newest
// first for the global view.
type AuditResult struct {
	RecordSlug string                 `json:"record_slug,omitempty"`
	Entries    []entities.LedgerEntry `json:"entries"`
}

// Handle returns the ledger for one record, or the most recent entries when slug is empty.
func (h *AuditHandler) Handle(ctx context.Context, slug string, limit int) (*AuditResult, error) {
	if slug != "" {
		entries, err := h.ledger.ForRecord(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("querying audit ledger: %w", err)
		}
		return &AuditResult{RecordSlug: slug, Entries: entries}, nil
	}

	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	entries, err := h.ledger.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit ledger: %w", err)
	}
	return &AuditResult{Entries: entries}, nil
}
