package ports

import (
	"context"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// AuditStore is the append-only ledger of applied field changes.
type AuditStore interface {
	// Append adds one ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *entities.LedgerEntry) error

	// QueryByRecord returns all entries for a record slug, oldest first.
	QueryByRecord(ctx context.Context, slug string) ([]entities.LedgerEntry, error)

	// QueryAll returns entries across all records, most recent first.
	// A limit of zero or less returns everything.
	QueryAll(ctx context.Context, limit int) ([]entities.LedgerEntry, error)
}
