package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// CatalogStore is an in-memory implementation of ports.CatalogStore.
type CatalogStore struct {
	mu       sync.Mutex
	Records  map[string]*entities.Record
	Err      error
	WriteErr error // fails writes only

	// Writes counts successful UpsertBySlug calls.
	Writes int
}

// NewCatalogStore creates a new mock CatalogStore.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{Records: make(map[string]*entities.Record)}
}

// Put seeds a record.
func (m *CatalogStore) Put(rec *entities.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Fields == nil {
		rec.Fields = make(map[string]any)
	}
	m.Records[rec.Slug] = rec
}

// FindBySlug finds a record by slug.
func (m *CatalogStore) FindBySlug(_ context.Context, slug string) (*entities.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[slug]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

// UpsertBySlug applies an update to a record.
func (m *CatalogStore) UpsertBySlug(_ context.Context, slug string, update entities.RecordUpdate) (*entities.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.Records[slug]
	if !ok {
		if !update.Upsert {
			return nil, fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
		}
		rec = &entities.Record{
			ID:        uuid.New().String(),
			Slug:      slug,
			Fields:    make(map[string]any),
			CreatedAt: time.Now(),
		}
		m.Records[slug] = rec
	}

	for k, v := range update.Set {
		rec.Fields[k] = v
	}
	for _, k := range update.Unset {
		delete(rec.Fields, k)
	}
	rec.History = append(rec.History, update.History)
	rec.UpdatedAt = time.Now()
	if update.EvaluateReady && entities.IsReady(rec.Fields) {
		rec.Ready = true
	}
	m.Writes++
	return copyRecord(rec), nil
}

// AppendHistory appends a history entry.
func (m *CatalogStore) AppendHistory(_ context.Context, slug string, entry entities.HistoryEntry) error {
	if m.Err != nil {
		return m.Err
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[slug]
	if !ok {
		return fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
	}
	rec.History = append(rec.History, entry)
	return nil
}

func copyRecord(rec *entities.Record) *entities.Record {
	cp := *rec
	cp.Fields = make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		cp.Fields[k] = v
	}
	cp.History = append([]entities.HistoryEntry(nil), rec.History...)
	return &cp
}
