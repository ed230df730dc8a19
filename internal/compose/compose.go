// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compose turns retrieval results and calculator output into a
// citation-annotated answer, then validates citations and the requested
// structure. Everything in the answer traces to a retrieved record or a
// calculator derivation; nothing is free-composed.
// Implements: prd005-composer (R1-R4);
//
//	docs/ARCHITECTURE § Composer.
package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Composer renders answers from grounded inputs.
type Composer struct {
	cfg types.ComposeConfig
}

// Defaults applied when the config leaves a knob at zero.
const (
	defaultSentencesPerCitation = 3
	defaultCoverageTarget       = 0.9
)

// NewComposer builds a composer.
func NewComposer(cfg types.ComposeConfig) *Composer {
	if cfg.SentencesPerCitation <= 0 {
		cfg.SentencesPerCitation = defaultSentencesPerCitation
	}
	if cfg.CoverageTarget <= 0 {
		cfg.CoverageTarget = defaultCoverageTarget
	}
	return &Composer{cfg: cfg}
}

// Compose renders the answer text for the requested format and returns the
// citations backing it. Results and tool calls are rendered in the order
// given; the composer never reorders or invents content. Per R1-R2.
func (c *Composer) Compose(query string, results []types.RetrievalResult, toolCalls []types.ToolCallResult, format types.OutputFormat) (string, []types.Citation) {
	citations := collectCitations(results, toolCalls)

	switch format {
	case types.FormatTable:
		return c.composeTable(results, toolCalls), citations
	case types.FormatJSON:
		return c.composeJSON(query, results, toolCalls), citations
	case types.FormatDecisionTree:
		return c.composeDecisionTree(results, toolCalls), citations
	default:
		return c.composeText(results, toolCalls), citations
	}
}

// composeText is the default enumerated rendering: one block per record
// with its source line, then calculator derivations. Per R1.2-R1.3.
func (c *Composer) composeText(results []types.RetrievalResult, toolCalls []types.ToolCallResult) string {
	var b strings.Builder
	if len(results) > 0 {
		b.WriteString("Based on official sources:\n\n")
		for i, res := range results {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(res.Text))
			for _, cit := range res.Citations {
				b.WriteString("   " + sourceLine(cit) + "\n")
			}
			b.WriteString("\n")
		}
	}
	writeToolBlock(&b, toolCalls)
	return strings.TrimRight(b.String(), "\n")
}

func (c *Composer) composeTable(results []types.RetrievalResult, toolCalls []types.ToolCallResult) string {
	var b strings.Builder
	b.WriteString("| # | Finding | Source |\n")
	b.WriteString("|---|---------|--------|\n")
	for i, res := range results {
		src := ""
		if len(res.Citations) > 0 {
			src = res.Citations[0].URL
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, pipeEscape(strings.TrimSpace(res.Text)), src)
	}
	for _, tc := range toolCalls {
		fmt.Fprintf(&b, "| %s | $%.2f (%s) | %s |\n", tc.Tool, tc.Value, pipeEscape(tc.Formula), tc.Source.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// jsonAnswer is the document shape emitted for the json format.
type jsonAnswer struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Sources []struct {
		Text string `json:"text"`
		URL  string `json:"url"`
	} `json:"sources"`
	ToolResults []types.ToolCallResult `json:"tool_results,omitempty"`
}

func (c *Composer) composeJSON(query string, results []types.RetrievalResult, toolCalls []types.ToolCallResult) string {
	doc := jsonAnswer{
		Query:       query,
		Answer:      c.composeText(results, toolCalls),
		ToolResults: toolCalls,
	}
	for _, res := range results {
		src := ""
		if len(res.Citations) > 0 {
			src = res.Citations[0].URL
		}
		doc.Sources = append(doc.Sources, struct {
			Text string `json:"text"`
			URL  string `json:"url"`
		}{Text: strings.TrimSpace(res.Text), URL: src})
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		// The document is built from plain values; marshalling cannot fail
		// in practice, but fall back to text rather than emit nothing.
		return c.composeText(results, toolCalls)
	}
	return string(out)
}

func (c *Composer) composeDecisionTree(results []types.RetrievalResult, toolCalls []types.ToolCallResult) string {
	var b strings.Builder
	b.WriteString("Decision path based on official sources:\n\n")
	for i, res := range results {
		fmt.Fprintf(&b, "If condition %d applies, then: %s\n", i+1, strings.TrimSpace(res.Text))
		for _, cit := range res.Citations {
			b.WriteString("  " + sourceLine(cit) + "\n")
		}
	}
	writeToolBlock(&b, toolCalls)
	return strings.TrimRight(b.String(), "\n")
}

func writeToolBlock(b *strings.Builder, toolCalls []types.ToolCallResult) {
	if len(toolCalls) == 0 {
		return
	}
	b.WriteString("Calculated results:\n\n")
	for _, tc := range toolCalls {
		fmt.Fprintf(b, "- %s: $%.2f\n", tc.Tool, tc.Value)
		fmt.Fprintf(b, "  Derivation: %s\n", tc.Formula)
		b.WriteString("  " + sourceLine(tc.Source) + "\n")
		for _, note := range tc.Notes {
			fmt.Fprintf(b, "  Note: %s\n", note)
		}
		b.WriteString("\n")
	}
}

func sourceLine(cit types.Citation) string {
	if cit.LastVerified.IsZero() {
		return "Source: " + cit.URL
	}
	return fmt.Sprintf("Source: %s (last verified %s)", cit.URL, cit.LastVerified.Format("2006-01-02"))
}

func pipeEscape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}

// collectCitations gathers the distinct citations backing an answer, in
// first-appearance order.
func collectCitations(results []types.RetrievalResult, toolCalls []types.ToolCallResult) []types.Citation {
	seen := make(map[string]bool)
	var out []types.Citation
	add := func(cit types.Citation) {
		if cit.URL == "" || seen[cit.URL] {
			return
		}
		seen[cit.URL] = true
		out = append(out, cit)
	}
	for _, res := range results {
		for _, cit := range res.Citations {
			add(cit)
		}
	}
	for _, tc := range toolCalls {
		add(tc.Source)
	}
	return out
}
