package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// FindBySlug finds a catalog record by slug. Returns nil if not found.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*entities.Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, `
		SELECT id, slug, fields, history, ready, created_at, updated_at
		FROM records
		WHERE slug = ?
	`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpsertBySlug applies update to the record in a single transaction: field sets
// and unsets, the history append and the ready evaluation commit together.
func (r *Repository) UpsertBySlug(ctx context.Context, slug string, update entities.RecordUpdate) (*entities.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := timeNow()
	rec, err := scanRecord(tx.QueryRowContext(ctx, `
		SELECT id, slug, fields, history, ready, created_at, updated_at
		FROM records
		WHERE slug = ?
	`, slug))
	isNew := false
	switch {
	case err == sql.ErrNoRows:
		if !update.Upsert {
			return nil, fmt.Errorf("%w: record %q", entities.ErrNotFound, slug)
		}
		isNew = true
		rec = &entities.Record{
			ID:        generateUUID(),
			Slug:      slug,
			Fields:    make(map[string]any),
			CreatedAt: now,
		}
	case err != nil:
		return nil, err
	}

	for k, v := range update.Set {
		rec.Fields[k] = v
	}
	for _, k := range update.Unset {
		delete(rec.Fields, k)
	}
	rec.History = append(rec.History, update.History)
	rec.UpdatedAt = now
	if update.EvaluateReady && entities.IsReady(rec.Fields) {
		rec.Ready = true
	}

	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshaling fields: %w", err)
	}
	history, err := json.Marshal(rec.History)
	if err != nil {
		return nil, fmt.Errorf("marshaling history: %w", err)
	}

	if isNew {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (id, slug, fields, history, ready, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.Slug, string(fields), string(history), rec.Ready, rec.CreatedAt, rec.UpdatedAt)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE records
			SET fields = ?, history = ?, ready = ?, updated_at = ?
			WHERE id = ?
		`, string(fields), string(history), rec.Ready, rec.UpdatedAt, rec.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("writing record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}
	return rec, nil
}

// AppendHistory appends a history entry to an existing record.
func (r *Repository) AppendHistory(ctx context.Context, slug string, entry entities.HistoryEntry) error {
	_, err := r.UpsertBySlug(ctx, slug, entities.RecordUpdate{History: entry})
	return err
}

// scanRecord scans one record row. It returns sql.ErrNoRows unwrapped.
func scanRecord(row rowScanner) (*entities.Record, error) {
	var (
		rec             entities.Record
		fields, history string
	)
	err := row.Scan(&rec.ID, &rec.Slug, &fields, &history, &rec.Ready, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if rec.Fields, err = decodeFields(fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
		return nil, fmt.Errorf("unmarshaling history: %w", err)
	}
	return &rec, nil
}
