// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EvalCategory groups fixture queries by the behavior they exercise.
// Per prd007-evaluation R1.1.
type EvalCategory string

const (
	CategoryAidEdgeCase      EvalCategory = "financial_aid_edge"
	CategoryInternalTransfer EvalCategory = "internal_transfer"
	CategoryResidency        EvalCategory = "residency_reciprocity"
	CategoryArticulation     EvalCategory = "transfer_articulation"
	CategoryInternational    EvalCategory = "international_visa"
	CategoryCostComparison   EvalCategory = "cost_comparison"
	CategoryUnanswerable     EvalCategory = "unanswerable"
	CategoryPolicyLookup     EvalCategory = "policy_lookup"
)

// ToolContext carries pre-parsed calculator inputs for a fixture query.
type ToolContext struct {
	Aid  *AidScenario  `json:"aid_scenario,omitempty" yaml:"aid_scenario,omitempty"`
	Cost *CostScenario `json:"cost_scenario,omitempty" yaml:"cost_scenario,omitempty"`
}

// EvalQuery is one fixture in the evaluation battery.
// Per prd007-evaluation R1.
type EvalQuery struct {
	// ID is a stable fixture identifier.
	ID string `json:"id" yaml:"id"`

	// Category groups the query for reporting.
	Category EvalCategory `json:"category" yaml:"category"`

	// Query is the question text fed to the pipeline.
	Query string `json:"query" yaml:"query"`

	// ExpectAbstain is the fixture's expected abstain behavior. Per R3.4.
	ExpectAbstain bool `json:"expect_abstain" yaml:"expect_abstain"`

	// Format is the requested output format. Empty means plain text.
	Format OutputFormat `json:"format,omitempty" yaml:"format,omitempty"`

	// ToolContext supplies calculator inputs when the query should route
	// to a tool.
	ToolContext ToolContext `json:"tool_context,omitempty" yaml:"tool_context,omitempty"`
}

// EvalResult is one scored fixture outcome.
type EvalResult struct {
	// QueryID references the fixture.
	QueryID string `json:"query_id" yaml:"query_id"`

	// Category copies the fixture category for grouped reporting.
	Category EvalCategory `json:"category" yaml:"category"`

	// Answer is the full pipeline output for the fixture.
	Answer AnswerResult `json:"answer" yaml:"answer"`

	// Passed is true when the outcome matched the fixture expectation and
	// tripped no invariant.
	Passed bool `json:"passed" yaml:"passed"`

	// Score is the per-query score on a 0-10 scale.
	Score float64 `json:"score" yaml:"score"`

	// Notes explains deductions.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// GateResult is one hard gate outcome. Per prd007-evaluation R4.
type GateResult struct {
	// Value is the measured rate.
	Value float64 `json:"value" yaml:"value"`

	// Threshold is the fixed pass boundary.
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// Passed reports whether the value clears the threshold.
	Passed bool `json:"passed" yaml:"passed"`
}

// EvalReport is the harness output document. Per prd007-evaluation R5.
type EvalReport struct {
	// RunID identifies the evaluation run.
	RunID string `json:"run_id" yaml:"run_id"`

	TotalQueries  int     `json:"total_queries" yaml:"total_queries"`
	PassedQueries int     `json:"passed_queries" yaml:"passed_queries"`
	PassRate      float64 `json:"pass_rate" yaml:"pass_rate"`
	AvgScore      float64 `json:"avg_score" yaml:"avg_score"`

	// HardGates holds each gate keyed by name. All must pass for the
	// pipeline to be ship-ready; a failing gate is a blocking signal.
	HardGates map[string]GateResult `json:"hard_gates" yaml:"hard_gates"`

	// AllGatesPassed is the ship/kill summary bit.
	AllGatesPassed bool `json:"all_gates_passed" yaml:"all_gates_passed"`

	// Results is the full per-query list for audit.
	Results []EvalResult `json:"results" yaml:"results"`
}
