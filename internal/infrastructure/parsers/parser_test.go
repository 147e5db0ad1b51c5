package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/catalog-review/internal/domain/entities"
)

func TestJSONParser_Parse(t *testing.T) {
	input := `[
		{"proposal_id": "c1", "decision": "approved"},
		{"proposal_id": "c2", "decision": "modified", "notes": "fixed case", "final_value": ["PC", "Switch"]}
	]`

	decisions, err := (&JSONParser{}).Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "c1", decisions[0].ProposalID)
	assert.Equal(t, 1, decisions[0].LineNum)
	assert.Equal(t, "fixed case", decisions[1].Notes)
	assert.Equal(t, []any{"PC", "Switch"}, decisions[1].FinalValue)
	assert.Equal(t, 2, decisions[1].LineNum)
}

func TestJSONParser_Parse_Invalid(t *testing.T) {
	_, err := (&JSONParser{}).Parse(strings.NewReader(`{"proposal_id": "c1"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing JSON")
}

func TestYAMLParser_Parse(t *testing.T) {
	input := `
- proposal_id: s1
  decision: approved
- proposal_id: c9
  decision: modified
  final_value: [PC]
  notes: platform list
- proposal_id: c10
  decision: modified
  final_value: true
`

	decisions, err := (&YAMLParser{}).Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.Equal(t, "s1", decisions[0].ProposalID)
	assert.Equal(t, []any{"PC"}, decisions[1].FinalValue)
	assert.Equal(t, true, decisions[2].FinalValue)
	assert.Equal(t, 3, decisions[2].LineNum)
}

func TestYAMLParser_Parse_Empty(t *testing.T) {
	decisions, err := (&YAMLParser{}).Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestCSVParser_Parse(t *testing.T) {
	input := "proposal_id,decision,notes,final_value\n" +
		"c1,approved,,\n" +
		"c2,modified,\"trimmed, fixed\",Unity\n" +
		"c3,modified,,\"[\"\"PC\"\",\"\"Mac\"\"]\"\n" +
		"c4,modified,,false\n"

	decisions, err := (&CSVParser{}).Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, decisions, 4)
	assert.Nil(t, decisions[0].FinalValue)
	assert.Equal(t, 2, decisions[0].LineNum)
	assert.Equal(t, "trimmed, fixed", decisions[1].Notes)
	assert.Equal(t, "Unity", decisions[1].FinalValue)
	assert.Equal(t, []string{"PC", "Mac"}, decisions[2].FinalValue)
	assert.Equal(t, false, decisions[3].FinalValue)
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing decision column", "proposal_id,notes\nc1,x\n", "missing required column: decision"},
		{"empty input", "", "reading CSV header"},
		{"bad array", "proposal_id,decision,final_value\nc1,modified,[oops\n", "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&CSVParser{}).Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequests(t *testing.T) {
	reqs := Requests([]RawDecision{
		{ProposalID: " c1 ", Decision: " Approved "},
		{ProposalID: "c2", Decision: "modified", FinalValue: "x", Notes: "n"},
	})

	require.Len(t, reqs, 2)
	assert.Equal(t, entities.ReviewRequest{ProposalID: "c1", Decision: entities.DecisionApproved}, reqs[0])
	assert.Equal(t, entities.DecisionModified, reqs[1].Decision)
	assert.Equal(t, "x", reqs[1].FinalValue)
}

func TestForFormatAndFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &YAMLParser{}, ForFormat("yml"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))

	assert.IsType(t, &YAMLParser{}, ForFile("decisions.yaml"))
	assert.IsType(t, &CSVParser{}, ForFile("/tmp/Decisions.CSV"))
	assert.Nil(t, ForFile("decisions"))
}

func TestParseSubmission(t *testing.T) {
	yamlInput := `
title: Tunic
data:
  developers: [Andrew Shouldice]
  releaseDate: "2022-03-16"
  multiplayer: false
notes: press kit
`
	sub, err := ParseSubmission(strings.NewReader(yamlInput), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "Tunic", sub.Title)
	assert.Equal(t, []any{"Andrew Shouldice"}, sub.Data["developers"])
	assert.Equal(t, "2022-03-16", sub.Data["releaseDate"])
	assert.Equal(t, false, sub.Data["multiplayer"])

	sub, err = ParseSubmission(strings.NewReader(`{"record_slug":"tunic"}`), "json")
	require.NoError(t, err)
	assert.Equal(t, "tunic", sub.RecordSlug)
	assert.NotNil(t, sub.Data)

	_, err = ParseSubmission(strings.NewReader(""), "toml")
	require.Error(t, err)

	assert.Equal(t, "yaml", SubmissionFormat("new-game.YAML"))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"", nil},
		{"  ", nil},
		{"Unity", "Unity"},
		{"true", true},
		{"false", false},
		{`["PC", "Mac"]`, []string{"PC", "Mac"}},
		{"[]", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseValue("[1, 2]")
	require.Error(t, err)
}
