package ports

import (
	"context"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// CatalogStore persists canonical catalog records.
type CatalogStore interface {
	// FindBySlug finds a record by slug. Returns nil if not found.
	FindBySlug(ctx context.Context, slug string) (*entities.Record, error)

	// UpsertBySlug applies an update as one atomic single-document write:
	// set and unset fields, append the history entry, bump updated-at and,
	// when requested, re-evaluate the ready flag.
	// Without update.Upsert a missing record yields entities.ErrNotFound.
	UpsertBySlug(ctx context.Context, slug string, update entities.RecordUpdate) (*entities.Record, error)

	// AppendHistory appends a history entry without touching fields.
	AppendHistory(ctx context.Context, slug string, entry entities.HistoryEntry) error
}
