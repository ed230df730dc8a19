// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ToolName identifies a deterministic calculator. Per prd004-tools R1.1.
type ToolName string

const (
	ToolAidIndex ToolName = "aid_index"
	ToolCost     ToolName = "cost_of_attendance"
)

// ToolRequest asks the pipeline to run one calculator for a query.
// Per prd004-tools R1.
type ToolRequest struct {
	// Tool is the calculator to invoke.
	Tool ToolName `json:"tool" yaml:"tool"`

	// ContextKey names the entry in the caller-supplied tool context that
	// holds the calculator's structured input. A missing key means the tool
	// contributes nothing; it is not an error. Per R1.4.
	ContextKey string `json:"context_key" yaml:"context_key"`
}

// ToolCallResult is the output of one calculator invocation.
// Per prd004-tools R3.
type ToolCallResult struct {
	// Tool identifies the calculator that produced this result.
	Tool ToolName `json:"tool_name" yaml:"tool_name"`

	// Value is the primary computed amount in dollars.
	Value float64 `json:"value" yaml:"value"`

	// Components breaks the value into named parts (e.g. tuition, fees).
	Components map[string]float64 `json:"components,omitempty" yaml:"components,omitempty"`

	// Formula describes the derivation step by step.
	Formula string `json:"formula_description" yaml:"formula_description"`

	// Source is the calculator's fixed policy-document citation. Per R3.3.
	Source Citation `json:"source_citation" yaml:"source_citation"`

	// Notes carries caveats from the policy table (e.g. table version).
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// OutputFormat selects the structural shape the caller requested for an
// answer. Per prd005-composer R4.1.
type OutputFormat string

const (
	FormatText         OutputFormat = "text"
	FormatTable        OutputFormat = "table"
	FormatJSON         OutputFormat = "json"
	FormatDecisionTree OutputFormat = "decision_tree"
)

// Structured reports whether the format carries a structural requirement
// the composer must validate. Per prd005-composer R4.2.
func (f OutputFormat) Structured() bool {
	return f == FormatTable || f == FormatJSON || f == FormatDecisionTree
}

// AnswerResult is the terminal output of the answer pipeline. It is created
// fresh per query and never mutated after construction.
type AnswerResult struct {
	// Query is the question that produced this result.
	Query string `json:"query" yaml:"query"`

	// AnswerText is the composed, citation-annotated answer. Empty when
	// ShouldAbstain is true.
	AnswerText string `json:"answer_text" yaml:"answer_text"`

	// Citations backing the answer.
	Citations []Citation `json:"citations" yaml:"citations"`

	// ToolCalls lists calculator results folded into the answer.
	ToolCalls []ToolCallResult `json:"tool_calls" yaml:"tool_calls"`

	// SchemaValid reports whether a structured format request was met.
	// Always true for plain text answers. Per prd005-composer R4.3.
	SchemaValid bool `json:"schema_valid" yaml:"schema_valid"`

	// CitationCoverage is the fraction of sentence groups backed by a
	// citation, in [0, 1]. Per prd005-composer R3.
	CitationCoverage float64 `json:"citation_coverage" yaml:"citation_coverage"`

	// ShouldAbstain is true when the pipeline declined to answer.
	ShouldAbstain bool `json:"should_abstain" yaml:"should_abstain"`

	// AbstainReason is the human-readable reason, verbatim from the
	// validator that declined. Per prd003-guardrails R1.3.
	AbstainReason string `json:"abstain_reason,omitempty" yaml:"abstain_reason,omitempty"`

	// RetrievalPlan records the collections and limits used, for audit.
	RetrievalPlan string `json:"retrieval_plan,omitempty" yaml:"retrieval_plan,omitempty"`

	// Recommendation is attached when the synthesis engine produced one.
	Recommendation *Recommendation `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
}
