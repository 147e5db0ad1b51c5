package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses decisions from a JSON array.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed decisions.
func (p *JSONParser) Parse(r io.Reader) ([]RawDecision, error) {
	var decisions []RawDecision

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&decisions); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Set line numbers (array index + 1, 1-indexed)
	for i := range decisions {
		decisions[i].LineNum = i + 1
	}

	return decisions, nil
}
