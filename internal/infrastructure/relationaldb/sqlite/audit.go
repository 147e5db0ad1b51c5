package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

const ledgerColumns = `id, record_slug, field, before_value, after_value, change, author_id, author_name,
	reviewer_id, reviewer_name, reason, review_notes, correction_id, submission_id, created_at`

// Append adds an entry to the audit ledger.
func (r *Repository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	before, err := encodeJSON(entry.Before)
	if err != nil {
		return err
	}
	after, err := encodeJSON(entry.After)
	if err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = generateUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = timeNow()
	}

	query := `INSERT INTO audit_ledger (` + ledgerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.RecordSlug,
		entry.Field,
		before,
		after,
		string(entry.Change),
		entry.Author.ID,
		entry.Author.Name,
		entry.Reviewer.ID,
		entry.Reviewer.Name,
		nullString(entry.Reason),
		nullString(entry.ReviewNotes),
		nullString(entry.CorrectionID),
		nullString(entry.SubmissionID),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	return nil
}

// QueryByRecord returns a record's ledger entries, oldest first.
func (r *Repository) QueryByRecord(ctx context.Context, slug string) ([]entities.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM audit_ledger WHERE record_slug = ? ORDER BY seq ASC`
	return r.queryLedger(ctx, query, slug)
}

// QueryAll returns ledger entries newest first. A non-positive limit returns all.
func (r *Repository) QueryAll(ctx context.Context, limit int) ([]entities.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM audit_ledger ORDER BY seq DESC LIMIT ?`
	return r.queryLedger(ctx, query, sqlLimit(limit))
}

func (r *Repository) queryLedger(ctx context.Context, query string, args ...any) ([]entities.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit ledger: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.LedgerEntry, 0, 16)
	for rows.Next() {
		var (
			e                          entities.LedgerEntry
			before, after              sql.NullString
			change                     string
			authorID, authorName       sql.NullString
			reviewerID, reviewerName   sql.NullString
			reason, reviewNotes        sql.NullString
			correctionID, submissionID sql.NullString
		)
		if err := rows.Scan(
			&e.ID,
			&e.RecordSlug,
			&e.Field,
			&before,
			&after,
			&change,
			&authorID,
			&authorName,
			&reviewerID,
			&reviewerName,
			&reason,
			&reviewNotes,
			&correctionID,
			&submissionID,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}

		e.Change = entities.ChangeKind(change)
		e.Author = entities.Person{ID: authorID.String, Name: authorName.String}
		e.Reviewer = entities.Person{ID: reviewerID.String, Name: reviewerName.String}
		e.Reason = reason.String
		e.ReviewNotes = reviewNotes.String
		e.CorrectionID = correctionID.String
		e.SubmissionID = submissionID.String
		if e.Before, err = decodeValue(before); err != nil {
			return nil, err
		}
		if e.After, err = decodeValue(after); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
