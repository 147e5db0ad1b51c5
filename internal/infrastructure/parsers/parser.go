// Package parsers reads review decision files and submission data files.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

// RawDecision is one reviewer decision read from a batch file before validation.
type RawDecision struct {
	ProposalID string `json:"proposal_id" yaml:"proposal_id"`
	Decision   string `json:"decision" yaml:"decision"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`
	FinalValue any    `json:"final_value,omitempty" yaml:"final_value,omitempty"`
	LineNum    int    `json:"-" yaml:"-"` // Line number in source file (set by parser)
}

// Request converts the raw decision to a review request. The decision string is
// passed through as-is; the review service rejects unknown values per item.
func (d RawDecision) Request() entities.ReviewRequest {
	return entities.ReviewRequest{
		ProposalID: strings.TrimSpace(d.ProposalID),
		Decision:   entities.Decision(strings.ToLower(strings.TrimSpace(d.Decision))),
		Notes:      d.Notes,
		FinalValue: d.FinalValue,
	}
}

// Requests converts raw decisions to review requests, preserving order.
func Requests(raw []RawDecision) []entities.ReviewRequest {
	out := make([]entities.ReviewRequest, 0, len(raw))
	for _, d := range raw {
		out = append(out, d.Request())
	}
	return out
}

// Parser defines the interface for parsing batch decision files.
type Parser interface {
	Parse(r io.Reader) ([]RawDecision, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	return ForFormat(strings.TrimPrefix(filepath.Ext(filename), "."))
}
