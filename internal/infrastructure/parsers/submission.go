package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RawSubmission is a submission read from a data file.
type RawSubmission struct {
	RecordSlug string         `json:"record_slug,omitempty" yaml:"record_slug,omitempty"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	Data       map[string]any `json:"data" yaml:"data"`
	Notes      string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ParseSubmission reads a submission document in the given format ("json" or "yaml").
func ParseSubmission(r io.Reader, format string) (*RawSubmission, error) {
	var sub RawSubmission
	switch strings.ToLower(format) {
	case "json":
		if err := json.NewDecoder(r).Decode(&sub); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&sub); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported submission format %q (use json or yaml)", format)
	}
	if sub.Data == nil {
		sub.Data = make(map[string]any)
	}
	return &sub, nil
}

// SubmissionFormat returns the format name for a submission file's extension.
func SubmissionFormat(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
