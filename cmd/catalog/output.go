package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatValue renders a field value on one line.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(empty)"
	case []string:
		return "[" + strings.Join(val, ", ") + "]"
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func displayCorrection(w io.Writer, c *entities.Correction) {
	fmt.Fprintf(w, "ID: %s\n", c.ID)
	fmt.Fprintf(w, "  [%s] %s.%s: %s -> %s\n", c.Status, c.RecordSlug, c.Field, formatValue(c.OldValue), formatValue(c.NewValue))
	fmt.Fprintf(w, "  Submitted by %s at %s\n", c.Submitter.Name, formatTime(c.SubmittedAt))
	if c.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", c.Reason)
	}
	if c.Reviewer != nil {
		fmt.Fprintf(w, "  Reviewed by %s\n", c.Reviewer.Name)
	}
	if c.Status == entities.StatusModified {
		fmt.Fprintf(w, "  Final value: %s\n", formatValue(c.FinalValue))
	}
	if c.ReviewNotes != "" {
		fmt.Fprintf(w, "  Notes: %s\n", c.ReviewNotes)
	}
	fmt.Fprintln(w)
}

func displaySubmission(w io.Writer, s *entities.Submission) {
	fmt.Fprintf(w, "ID: %s\n", s.ID)
	fmt.Fprintf(w, "  [%s] %s (%s)\n", s.Status, s.RecordTitle, s.RecordSlug)
	fmt.Fprintf(w, "  Submitted by %s at %s\n", s.Submitter.Name, formatTime(s.SubmittedAt))
	displayFields(w, s.ProposedData)
	if s.Notes != "" {
		fmt.Fprintf(w, "  Notes: %s\n", s.Notes)
	}
	if s.Reviewer != nil {
		fmt.Fprintf(w, "  Reviewed by %s\n", s.Reviewer.Name)
	}
	if s.ReviewNotes != "" {
		fmt.Fprintf(w, "  Review notes: %s\n", s.ReviewNotes)
	}
	fmt.Fprintln(w)
}

func displayFields(w io.Writer, fields map[string]any) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "    %s: %s\n", name, formatValue(fields[name]))
	}
}

func displayRecord(w io.Writer, rec *entities.Record) {
	ready := "not ready"
	if rec.Ready {
		ready = "ready"
	}
	fmt.Fprintf(w, "%s (%s) - %s\n", rec.Title(), rec.Slug, ready)
	displayFields(w, rec.Fields)
	if len(rec.History) == 0 {
		return
	}
	fmt.Fprintf(w, "\nHistory (%d):\n", len(rec.History))
	for _, h := range rec.History {
		target := h.Field
		if len(h.Fields) > 0 {
			target = strings.Join(h.Fields, ", ")
		}
		fmt.Fprintf(w, "  %s %s %s by %s, reviewed by %s\n",
			formatTime(h.Timestamp), h.Kind, target, h.Submitter.Name, h.Reviewer.Name)
	}
}

func displayLedger(w io.Writer, entries []entities.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No audit entries found.")
		return
	}
	for _, e := range entries {
		after := formatValue(e.After)
		if e.Change == entities.ChangeClear {
			after = "(cleared)"
		}
		fmt.Fprintf(w, "%s %s.%s: %s -> %s (author %s, reviewer %s)\n",
			formatTime(e.CreatedAt), e.RecordSlug, e.Field, formatValue(e.Before), after, e.Author.ID, e.Reviewer.ID)
	}
}

func displayUser(w io.Writer, u *entities.User) {
	fmt.Fprintf(w, "%s (%s)\n", u.Name, u.ID)
	fmt.Fprintf(w, "  Role: %s\n", u.Role)
	fmt.Fprintf(w, "  Status: %s\n", u.Status)
	if len(u.Counters) > 0 {
		fmt.Fprintln(w, "  Contributions:")
		for _, c := range entities.AllCounters {
			fmt.Fprintf(w, "    %s: %d\n", c, u.Counters[c])
		}
	}
}

func displayBatch(w io.Writer, result *entities.BatchResult) {
	fmt.Fprintf(w, "Processed %d of %d\n", result.Processed, result.Total)
	if len(result.Skipped) == 0 {
		return
	}
	fmt.Fprintf(w, "\nSkipped (%d):\n", len(result.Skipped))
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  #%d %s [%s]: %s\n", s.Index+1, s.ProposalID, s.Kind, s.Reason)
	}
}
