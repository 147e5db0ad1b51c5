package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses decisions from a YAML sequence.
type YAMLParser struct{}

// Parse reads YAML from the reader and returns parsed decisions.
func (p *YAMLParser) Parse(r io.Reader) ([]RawDecision, error) {
	var decisions []RawDecision

	if err := yaml.NewDecoder(r).Decode(&decisions); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	for i := range decisions {
		decisions[i].LineNum = i + 1
	}

	return decisions, nil
}
