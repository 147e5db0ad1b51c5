package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

type ledgerExporter struct {
	format string
	output string
}

func newLedgerExporter(format, output string) (*ledgerExporter, error) {
	if !slices.Contains(exportFormats, format) {
		return nil, fmt.Errorf("%w: invalid format %q, valid formats: %v", entities.ErrValidation, format, exportFormats)
	}
	return &ledgerExporter{format: format, output: output}, nil
}

// export writes entries to the output file, or to stdout when no file is set.
func (e *ledgerExporter) export(stdout io.Writer, entries []entities.LedgerEntry) (err error) {
	w := stdout
	if e.output != "" {
		var f *os.File
		f, err = os.OpenFile(e.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing file: %w", cerr)
			}
		}()
		w = f
	}

	if err := e.formatLedger(w, entries); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if e.output != "" {
		fmt.Fprintf(stdout, "Exported %d entries to %s\n", len(entries), e.output)
	}
	return nil
}

func (e *ledgerExporter) formatLedger(w io.Writer, entries []entities.LedgerEntry) error {
	switch e.format {
	case "json":
		return printJSON(w, entries)
	case "csv":
		return formatLedgerCSV(w, entries)
	case "markdown":
		return formatLedgerMarkdown(w, entries)
	default:
		displayLedger(w, entries)
		return nil
	}
}

func formatLedgerCSV(w io.Writer, entries []entities.LedgerEntry) error {
	writer := csv.NewWriter(w)

	header := []string{"created_at", "record_slug", "field", "change", "before", "after", "author", "reviewer", "correction_id", "submission_id"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			formatTime(e.CreatedAt),
			e.RecordSlug,
			e.Field,
			string(e.Change),
			exportValue(e.Before),
			exportValue(e.After),
			e.Author.ID,
			e.Reviewer.ID,
			e.CorrectionID,
			e.SubmissionID,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatLedgerMarkdown(w io.Writer, entries []entities.LedgerEntry) error {
	if _, err := fmt.Fprintf(w, "# Audit Ledger\n\nTotal: %d entries\n\n", len(entries)); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "| Time | Record | Field | Before | After | Author | Reviewer |\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "|------|--------|-------|--------|-------|--------|----------|\n"); err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			formatTime(e.CreatedAt),
			escapeMarkdown(e.RecordSlug),
			escapeMarkdown(e.Field),
			escapeMarkdown(exportValue(e.Before)),
			escapeMarkdown(exportValue(e.After)),
			escapeMarkdown(e.Author.ID),
			escapeMarkdown(e.Reviewer.ID),
		); err != nil {
			return err
		}
	}
	return nil
}

// exportValue renders a value for a single cell; absent values stay empty.
func exportValue(v any) string {
	if v == nil {
		return ""
	}
	return formatValue(v)
}

func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
