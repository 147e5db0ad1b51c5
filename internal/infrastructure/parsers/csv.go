package parsers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// CSVParser parses decisions from CSV format.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed decisions.
// Expected columns: proposal_id, decision, notes, final_value
func (p *CSVParser) Parse(r io.Reader) ([]RawDecision, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, colIndex)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(col)] = i
	}

	requiredCols := []string{"proposal_id", "decision"}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	return colIndex, nil
}

// readRecords reads all data rows and converts them to RawDecisions.
func (p *CSVParser) readRecords(reader *csv.Reader, colIndex map[string]int) ([]RawDecision, error) {
	var decisions []RawDecision
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		d, err := p.parseRecord(record, colIndex, lineNum)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}

	return decisions, nil
}

// parseRecord converts a CSV record to a RawDecision.
func (p *CSVParser) parseRecord(record []string, colIndex map[string]int, lineNum int) (RawDecision, error) {
	d := RawDecision{
		ProposalID: getColumn(record, colIndex, "proposal_id"),
		Decision:   getColumn(record, colIndex, "decision"),
		Notes:      getColumn(record, colIndex, "notes"),
		LineNum:    lineNum,
	}

	value, err := ParseValue(getColumn(record, colIndex, "final_value"))
	if err != nil {
		return RawDecision{}, fmt.Errorf("line %d: invalid final_value: %w", lineNum, err)
	}
	d.FinalValue = value

	return d, nil
}

// ParseValue reads a flat text value as a JSON string array when bracketed,
// a boolean for true/false, and a string otherwise. Empty text is no value.
func ParseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.HasPrefix(s, "["):
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err != nil {
			return nil, err
		}
		return arr, nil
	case s == "true":
		return true, nil
	case s == "false":
		return false, nil
	default:
		return s, nil
	}
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
