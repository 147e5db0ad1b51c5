package entities

import (
	"regexp"
	"strings"
	"time"
)

var (
	reSlugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	reSlugDashes  = regexp.MustCompile(`-+`)
)

// UpdateKind classifies a record history entry.
type UpdateKind string

// History entry kinds.
const (
	UpdateCorrection         UpdateKind = "correction"
	UpdateCorrectionModified UpdateKind = "correction_modified"
	UpdateSubmission         UpdateKind = "submission"
)

// HistoryEntry is one element of a record's embedded, append-only update history.
type HistoryEntry struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Submitter Person     `json:"submitter"`
	Reviewer  Person     `json:"reviewer"`
	Field     string     `json:"field,omitempty"`
	Fields    []string   `json:"fields,omitempty"`
	Kind      UpdateKind `json:"kind"`
	Notes     string     `json:"notes,omitempty"`
}

// Record is a canonical catalog entry. Slug is its stable identity.
type Record struct {
	ID        string         `json:"id"`
	Slug      string         `json:"slug"`
	Fields    map[string]any `json:"fields"`
	History   []HistoryEntry `json:"history"`
	Ready     bool           `json:"ready"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Title returns the record's title field, or its slug when unset.
func (r *Record) Title() string {
	if s, ok := r.Fields[FieldTitle].(string); ok && s != "" {
		return s
	}
	return r.Slug
}

// Value returns the current value of a field, nil when unset.
func (r *Record) Value(field string) any {
	if r == nil || r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

// IsReady reports whether every required field is non-empty.
func IsReady(fields map[string]any) bool {
	for _, f := range RequiredFields {
		if IsClearValue(fields[f]) {
			return false
		}
	}
	return true
}

// RecordUpdate describes one atomic single-document write against a record.
type RecordUpdate struct {
	Set     map[string]any
	Unset   []string
	History HistoryEntry
	// Upsert creates the record when the slug is absent.
	Upsert bool
	// EvaluateReady re-checks RequiredFields against the merged result and sets Ready when satisfied.
	EvaluateReady bool
}

// Slugify converts a title into a URL-safe slug.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = reSlugInvalid.ReplaceAllString(s, "")
	s = reSlugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
