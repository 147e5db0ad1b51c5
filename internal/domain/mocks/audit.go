package mocks

import (
	"context"
	"sync"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// AuditStore is an in-memory implementation of ports.AuditStore.
type AuditStore struct {
	mu      sync.Mutex
	Entries []entities.LedgerEntry
	Err     error
}

// NewAuditStore creates a new mock AuditStore.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Append adds a ledger entry.
func (m *AuditStore) Append(_ context.Context, entry *entities.LedgerEntry) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *entry)
	return nil
}

// QueryByRecord returns entries for a slug, oldest first.
func (m *AuditStore) QueryByRecord(_ context.Context, slug string) ([]entities.LedgerEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.LedgerEntry
	for i := range m.Entries {
		if m.Entries[i].RecordSlug == slug {
			result = append(result, m.Entries[i])
		}
	}
	return result, nil
}

// QueryAll returns entries most recent first.
func (m *AuditStore) QueryAll(_ context.Context, limit int) ([]entities.LedgerEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]entities.LedgerEntry, 0, len(m.Entries))
	for i := len(m.Entries) - 1; i >= 0; i-- {
		result = append(result, m.Entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}
