// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

func sampleResults() []types.RetrievalResult {
	verified := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return []types.RetrievalResult{
		{
			Text:      "In-state tuition is $11,260 for the 2026-27 year.",
			Citations: []types.Citation{types.NewCitation("https://registrar.stateu.edu/tuition", verified, nil)},
		},
		{
			Text:      "The FAFSA priority deadline is March 1.",
			Citations: []types.Citation{types.NewCitation("https://studentaid.gov/fafsa", verified, nil)},
		},
	}
}

func sampleToolCall() types.ToolCallResult {
	return types.ToolCallResult{
		Tool:    types.ToolCost,
		Value:   29772,
		Formula: "tuition $11260 + fees $1642 + housing $13480 + books $1240 + personal $2150 = $29772",
		Source:  types.NewCitation("https://stateu.edu/financial-aid/cost-of-attendance", time.Time{}, nil),
	}
}

func TestComposeText(t *testing.T) {
	c := NewComposer(types.ComposeConfig{})
	text, citations := c.Compose("q", sampleResults(), []types.ToolCallResult{sampleToolCall()}, types.FormatText)

	assert.True(t, strings.HasPrefix(text, "Based on official sources:"))
	assert.Contains(t, text, "1. In-state tuition is $11,260")
	assert.Contains(t, text, "Source: https://registrar.stateu.edu/tuition (last verified 2026-01-05)")
	assert.Contains(t, text, "Calculated results:")
	assert.Contains(t, text, "Derivation: tuition $11260")
	assert.Len(t, citations, 3)
}

func TestComposeCitationsDeduplicated(t *testing.T) {
	results := sampleResults()
	results[1].Citations = results[0].Citations
	c := NewComposer(types.ComposeConfig{})
	_, citations := c.Compose("q", results, nil, types.FormatText)
	assert.Len(t, citations, 1)
}

func TestComposeTablePassesSchema(t *testing.T) {
	c := NewComposer(types.ComposeConfig{})
	text, _ := c.Compose("q", sampleResults(), nil, types.FormatTable)
	assert.True(t, CheckSchema(text, types.FormatTable), "table output:\n%s", text)
}

func TestComposeJSONPassesSchema(t *testing.T) {
	c := NewComposer(types.ComposeConfig{})
	text, _ := c.Compose("compare costs", sampleResults(), []types.ToolCallResult{sampleToolCall()}, types.FormatJSON)
	assert.True(t, CheckSchema(text, types.FormatJSON), "json output:\n%s", text)
}

func TestComposeDecisionTreePassesSchema(t *testing.T) {
	c := NewComposer(types.ComposeConfig{})
	text, _ := c.Compose("q", sampleResults(), nil, types.FormatDecisionTree)
	assert.True(t, CheckSchema(text, types.FormatDecisionTree))
}

func TestCheckSchemaRejects(t *testing.T) {
	assert.False(t, CheckSchema("just prose, no pipes", types.FormatTable))
	assert.False(t, CheckSchema("not json at all", types.FormatJSON))
	assert.False(t, CheckSchema(`{"answer": "missing query and sources"}`, types.FormatJSON))
	assert.False(t, CheckSchema("no conditional phrasing here", types.FormatDecisionTree))
	assert.True(t, CheckSchema("anything", types.FormatText))
}

func TestCheckCitations(t *testing.T) {
	c := NewComposer(types.ComposeConfig{})

	text, citations := c.Compose("q", sampleResults(), nil, types.FormatText)
	report := c.CheckCitations(text, len(citations))
	require.True(t, report.OK, "reason: %s", report.Reason)
	assert.Greater(t, report.Coverage, 0.0)

	report = c.CheckCitations("Tuition is $11,260 and fees are $1,642.", 0)
	assert.False(t, report.OK)
	assert.Contains(t, report.Reason, "citation coverage")

	report = c.CheckCitations("The deadline is in the spring.", 0)
	assert.False(t, report.OK, "no source markers must fail even without numbers")
}

func TestNumericTokenDetection(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Tuition is $11,260 per year.", true},
		{"About 47% of applicants are admitted.", true},
		{"The average GPA is 3.85.", true},
		{"Applications open in the fall.", false},
	}
	for _, tt := range tests {
		if got := numericTokenRe.MatchString(tt.text); got != tt.want {
			t.Errorf("numericTokenRe.MatchString(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasUncitedNumbers(t *testing.T) {
	assert.True(t, HasUncitedNumbers("The total is $29,772.", 0))
	assert.False(t, HasUncitedNumbers("The total is $29,772.", 1))
	assert.False(t, HasUncitedNumbers("No numbers here.", 0))
}
