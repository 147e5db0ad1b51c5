package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

const correctionColumns = `id, group_id, record_id, record_slug, record_title, submitter_id, submitter_name,
	submitted_at, field, old_value, new_value, reason, status, reviewer_id, reviewer_name,
	reviewed_at, review_notes, final_value, notification_threads`

const submissionColumns = `id, group_id, record_slug, record_title, submitter_id, submitter_name,
	submitted_at, proposed_data, notes, status, reviewer_id, reviewer_name, reviewed_at,
	review_notes, notification_threads`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// SaveCorrection inserts a new correction.
func (r *Repository) SaveCorrection(ctx context.Context, c *entities.Correction) error {
	oldValue, err := encodeJSON(c.OldValue)
	if err != nil {
		return err
	}
	newValue, err := encodeJSON(c.NewValue)
	if err != nil {
		return err
	}
	threads, err := encodeThreads(c.NotificationThreads)
	if err != nil {
		return err
	}
	status := c.Status
	if status == "" {
		status = entities.StatusPending
	}

	query := `
		INSERT INTO corrections (id, group_id, record_id, record_slug, record_title, submitter_id,
			submitter_name, submitted_at, field, old_value, new_value, reason, status, notification_threads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		nullString(c.GroupID),
		nullString(c.RecordID),
		c.RecordSlug,
		c.RecordTitle,
		c.Submitter.ID,
		c.Submitter.Name,
		c.SubmittedAt,
		c.Field,
		oldValue,
		newValue,
		nullString(c.Reason),
		string(status),
		threads,
	)
	if err != nil {
		return fmt.Errorf("saving correction: %w", err)
	}
	return nil
}

// FindCorrection finds a correction by ID. Returns nil if not found.
func (r *Repository) FindCorrection(ctx context.Context, id string) (*entities.Correction, error) {
	query := `SELECT ` + correctionColumns + ` FROM corrections WHERE id = ?`
	c, err := scanCorrection(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCorrections lists corrections newest first. An empty status matches all.
func (r *Repository) ListCorrections(ctx context.Context, status entities.Status, limit int) ([]entities.Correction, error) {
	query := `
		SELECT ` + correctionColumns + `
		FROM corrections
		WHERE (? = '' OR status = ?)
		ORDER BY submitted_at DESC, id
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, string(status), string(status), sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying corrections: %w", err)
	}
	defer rows.Close()

	corrections := make([]entities.Correction, 0, 16)
	for rows.Next() {
		c, err := scanCorrection(rows)
		if err != nil {
			return nil, err
		}
		corrections = append(corrections, *c)
	}
	return corrections, rows.Err()
}

// TransitionCorrection moves a correction out of pending. It reports false when
// the correction is missing or no longer pending.
func (r *Repository) TransitionCorrection(ctx context.Context, id string, t entities.Transition) (bool, error) {
	var finalValue sql.NullString
	if t.To == entities.StatusModified {
		v, err := encodeJSON(t.FinalValue)
		if err != nil {
			return false, err
		}
		// A modified clear is stored as JSON null so the column stays distinguishable.
		if !v.Valid {
			v = sql.NullString{String: "null", Valid: true}
		}
		finalValue = v
	}

	query := `
		UPDATE corrections
		SET status = ?, reviewer_id = ?, reviewer_name = ?, reviewed_at = ?, review_notes = ?, final_value = ?
		WHERE id = ? AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query,
		string(t.To),
		t.Reviewer.ID,
		t.Reviewer.Name,
		t.ReviewedAt,
		nullString(t.Notes),
		finalValue,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("transitioning correction: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking transition result: %w", err)
	}
	return n == 1, nil
}

// SaveSubmission inserts a new submission.
func (r *Repository) SaveSubmission(ctx context.Context, s *entities.Submission) error {
	data, err := json.Marshal(s.ProposedData)
	if err != nil {
		return fmt.Errorf("marshaling proposed data: %w", err)
	}
	threads, err := encodeThreads(s.NotificationThreads)
	if err != nil {
		return err
	}
	status := s.Status
	if status == "" {
		status = entities.StatusPending
	}

	query := `
		INSERT INTO submissions (id, group_id, record_slug, record_title, submitter_id, submitter_name,
			submitted_at, proposed_data, notes, status, notification_threads)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		nullString(s.GroupID),
		s.RecordSlug,
		s.RecordTitle,
		s.Submitter.ID,
		s.Submitter.Name,
		s.SubmittedAt,
		string(data),
		nullString(s.Notes),
		string(status),
		threads,
	)
	if err != nil {
		return fmt.Errorf("saving submission: %w", err)
	}
	return nil
}

// FindSubmission finds a submission by ID. Returns nil if not found.
func (r *Repository) FindSubmission(ctx context.Context, id string) (*entities.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = ?`
	s, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSubmissions lists submissions newest first. An empty status matches all.
func (r *Repository) ListSubmissions(ctx context.Context, status entities.Status, limit int) ([]entities.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE (? = '' OR status = ?)
		ORDER BY submitted_at DESC, id
		LIMIT ?
	`
	return r.querySubmissions(ctx, query, string(status), string(status), sqlLimit(limit))
}

// FindPendingSubmissionsBySlug returns pending submissions for a slug, oldest first.
func (r *Repository) FindPendingSubmissionsBySlug(ctx context.Context, slug string) ([]entities.Submission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM submissions
		WHERE record_slug = ? AND status = 'pending'
		ORDER BY submitted_at ASC, id
	`
	return r.querySubmissions(ctx, query, slug)
}

// TransitionSubmission moves a submission out of pending. It reports false when
// the submission is missing or no longer pending.
func (r *Repository) TransitionSubmission(ctx context.Context, id string, t entities.Transition) (bool, error) {
	query := `
		UPDATE submissions
		SET status = ?, reviewer_id = ?, reviewer_name = ?, reviewed_at = ?, review_notes = ?
		WHERE id = ? AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query,
		string(t.To),
		t.Reviewer.ID,
		t.Reviewer.Name,
		t.ReviewedAt,
		nullString(t.Notes),
		id,
	)
	if err != nil {
		return false, fmt.Errorf("transitioning submission: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking transition result: %w", err)
	}
	return n == 1, nil
}

// SetNotificationThreads replaces the stored thread ids of a proposal.
func (r *Repository) SetNotificationThreads(ctx context.Context, kind entities.ProposalKind, id string, threads []string) error {
	var table string
	switch kind {
	case entities.KindCorrection:
		table = "corrections"
	case entities.KindSubmission:
		table = "submissions"
	default:
		return fmt.Errorf("unknown proposal kind %q", kind)
	}

	encoded, err := encodeThreads(threads)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + ` SET notification_threads = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, encoded, id); err != nil {
		return fmt.Errorf("setting notification threads: %w", err)
	}
	return nil
}

func (r *Repository) querySubmissions(ctx context.Context, query string, args ...any) ([]entities.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]entities.Submission, 0, 16)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}

// scanCorrection scans one correction row. It returns sql.ErrNoRows unwrapped.
func scanCorrection(row rowScanner) (*entities.Correction, error) {
	var (
		c                               entities.Correction
		groupID, recordID, recordTitle  sql.NullString
		submitterName, reason           sql.NullString
		oldValue, newValue, finalValue  sql.NullString
		status                          string
		reviewerID, reviewerName, notes sql.NullString
		reviewedAt                      sql.NullTime
		threads                         string
	)
	err := row.Scan(
		&c.ID,
		&groupID,
		&recordID,
		&c.RecordSlug,
		&recordTitle,
		&c.Submitter.ID,
		&submitterName,
		&c.SubmittedAt,
		&c.Field,
		&oldValue,
		&newValue,
		&reason,
		&status,
		&reviewerID,
		&reviewerName,
		&reviewedAt,
		&notes,
		&finalValue,
		&threads,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning correction: %w", err)
	}

	c.GroupID = groupID.String
	c.RecordID = recordID.String
	c.RecordTitle = recordTitle.String
	c.Submitter.Name = submitterName.String
	c.Reason = reason.String
	c.Status = entities.Status(status)
	c.ReviewNotes = notes.String
	if reviewerID.Valid {
		c.Reviewer = &entities.Person{ID: reviewerID.String, Name: reviewerName.String}
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		c.ReviewedAt = &t
	}

	if c.OldValue, err = decodeValue(oldValue); err != nil {
		return nil, err
	}
	if c.NewValue, err = decodeValue(newValue); err != nil {
		return nil, err
	}
	if c.FinalValue, err = decodeValue(finalValue); err != nil {
		return nil, err
	}
	if c.NotificationThreads, err = decodeThreads(threads); err != nil {
		return nil, err
	}
	return &c, nil
}

// scanSubmission scans one submission row. It returns sql.ErrNoRows unwrapped.
func scanSubmission(row rowScanner) (*entities.Submission, error) {
	var (
		s                        entities.Submission
		groupID, recordTitle     sql.NullString
		submitterName, notes     sql.NullString
		data, status, threads    string
		reviewerID, reviewerName sql.NullString
		reviewNotes              sql.NullString
		reviewedAt               sql.NullTime
	)
	err := row.Scan(
		&s.ID,
		&groupID,
		&s.RecordSlug,
		&recordTitle,
		&s.Submitter.ID,
		&submitterName,
		&s.SubmittedAt,
		&data,
		&notes,
		&status,
		&reviewerID,
		&reviewerName,
		&reviewedAt,
		&reviewNotes,
		&threads,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning submission: %w", err)
	}

	s.GroupID = groupID.String
	s.RecordTitle = recordTitle.String
	s.Submitter.Name = submitterName.String
	s.Notes = notes.String
	s.Status = entities.Status(status)
	s.ReviewNotes = reviewNotes.String
	if reviewerID.Valid {
		s.Reviewer = &entities.Person{ID: reviewerID.String, Name: reviewerName.String}
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		s.ReviewedAt = &t
	}

	if s.ProposedData, err = decodeFields(data); err != nil {
		return nil, err
	}
	if s.NotificationThreads, err = decodeThreads(threads); err != nil {
		return nil, err
	}
	return &s, nil
}
