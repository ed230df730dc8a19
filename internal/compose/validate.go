// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compose

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// numericTokenRe matches the claims the anti-fabrication check cares
// about: currency amounts, percentages, and bare decimals.
var numericTokenRe = regexp.MustCompile(`\$[0-9][0-9,]*(?:\.[0-9]+)?|[0-9]+(?:\.[0-9]+)?%|\b[0-9]+\.[0-9]+\b`)

var sentenceEndRe = regexp.MustCompile(`[.!?](?:\s|$)`)

// CitationReport is the outcome of citation validation.
type CitationReport struct {
	// Coverage is citation markers per sentence group, capped at 1.
	Coverage float64

	// OK is false when the answer must not ship: no citation markers at
	// all, or numeric claims with zero citations behind them.
	OK bool

	// Reason names the coverage shortfall for the abstain message.
	Reason string
}

// CheckCitations enforces the grounding invariant on a composed answer:
// at least one source marker, and no numeric claims without any citation
// to trace them to. Per R3.
func (c *Composer) CheckCitations(text string, citationCount int) CitationReport {
	markers := strings.Count(text, "Source:")
	coverage := c.coverage(text, markers)

	if markers == 0 {
		return CitationReport{
			Coverage: coverage,
			Reason: fmt.Sprintf("insufficient citation coverage: %.0f%% against a %.0f%% target",
				coverage*100, c.cfg.CoverageTarget*100),
		}
	}
	if citationCount == 0 && numericTokenRe.MatchString(text) {
		return CitationReport{
			Coverage: coverage,
			Reason:   "numeric claims present with no citations to support them",
		}
	}
	return CitationReport{Coverage: coverage, OK: true}
}

// coverage is the informational ratio of source markers to sentence
// groups. The group size divisor is configurable and not load-bearing;
// the hard invariant is the marker and numeric check above.
func (c *Composer) coverage(text string, markers int) float64 {
	sentences := len(sentenceEndRe.FindAllString(text, -1))
	if sentences == 0 {
		sentences = 1
	}
	groups := (sentences + c.cfg.SentencesPerCitation - 1) / c.cfg.SentencesPerCitation
	cov := float64(markers) / float64(groups)
	if cov > 1 {
		cov = 1
	}
	return cov
}

// answerSchema is the minimal shape a json-format answer must satisfy.
const answerSchema = `{
	"type": "object",
	"required": ["query", "answer", "sources"],
	"properties": {
		"query": {"type": "string"},
		"answer": {"type": "string"},
		"sources": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["text", "url"]
			}
		}
	}
}`

// CheckSchema reports whether the text satisfies the structural contract
// of the requested format. Plain text always passes. A failure marks the
// answer SchemaValid=false; it does not force an abstain. Per R4.
func CheckSchema(text string, format types.OutputFormat) bool {
	switch format {
	case types.FormatTable:
		return checkTable(text)
	case types.FormatJSON:
		return checkJSON(text)
	case types.FormatDecisionTree:
		return checkDecisionTree(text)
	default:
		return true
	}
}

func checkTable(text string) bool {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") {
			rows++
		}
	}
	// Header, separator, and at least one data row.
	return rows >= 3
}

func checkJSON(text string) bool {
	if !json.Valid([]byte(text)) {
		return false
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(answerSchema),
		gojsonschema.NewStringLoader(text),
	)
	return err == nil && result.Valid()
}

func checkDecisionTree(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "if ") && strings.Contains(lower, "then")
}

// HasUncitedNumbers reports whether the text carries numeric claims while
// the citation list is empty. The pipeline runs this once more immediately
// before returning, as the final anti-fabrication invariant.
func HasUncitedNumbers(text string, citationCount int) bool {
	return citationCount == 0 && numericTokenRe.MatchString(text)
}
