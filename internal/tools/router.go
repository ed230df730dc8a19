// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"strings"
	"unicode"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// toolRule declares the trigger vocabulary for one calculator. Single
// words must match a whole query token ("said" never triggers "sai");
// multi-word phrases match as substrings of the lowercased query.
type toolRule struct {
	tool       types.ToolName
	contextKey string
	words      []string
	phrases    []string
}

var toolRules = []toolRule{
	{
		tool:       types.ToolAidIndex,
		contextKey: "aid",
		words:      []string{"sai", "efc", "fafsa"},
		phrases: []string{
			"student aid index",
			"expected family contribution",
			"financial aid index",
			"how much aid",
			"need-based aid estimate",
		},
	},
	{
		tool:       types.ToolCost,
		contextKey: "cost",
		words:      []string{"cost", "coa", "tuition"},
		phrases: []string{
			"cost of attendance",
			"net price",
			"total cost",
			"how much does it cost",
			"how much will it cost",
			"sticker price",
		},
	},
}

// IdentifyTools returns the calculators whose trigger vocabulary appears in
// the query, in declared rule order. Per R1.1-R1.2.
func IdentifyTools(query string) []types.ToolRequest {
	q := strings.ToLower(query)
	tokens := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[tok] = true
	}

	var requests []types.ToolRequest
	for _, rule := range toolRules {
		if rule.matches(q, tokens) {
			requests = append(requests, types.ToolRequest{
				Tool:       rule.tool,
				ContextKey: rule.contextKey,
			})
		}
	}
	return requests
}

func (r toolRule) matches(query string, tokens map[string]bool) bool {
	for _, w := range r.words {
		if tokens[w] {
			return true
		}
	}
	for _, p := range r.phrases {
		if strings.Contains(query, p) {
			return true
		}
	}
	return false
}

// Toolkit executes identified tools against the caller-supplied context.
type Toolkit struct {
	aid  *AidIndexCalculator
	cost *CostCalculator
}

// NewToolkit builds the toolkit over loaded policy tables.
func NewToolkit(policies *PolicySet) *Toolkit {
	return &Toolkit{
		aid:  NewAidIndexCalculator(policies),
		cost: NewCostCalculator(policies),
	}
}

// Execute runs one identified tool. A missing context entry returns a
// ToolExecutionError, which callers recover by skipping the tool; it is
// never fatal to the pipeline. Per R1.4, R3.
func (t *Toolkit) Execute(req types.ToolRequest, tc types.ToolContext) (types.ToolCallResult, error) {
	switch req.Tool {
	case types.ToolAidIndex:
		if tc.Aid == nil {
			return types.ToolCallResult{}, &types.ToolExecutionError{Tool: req.Tool, ContextKey: req.ContextKey}
		}
		return t.aid.Calculate(*tc.Aid, "")
	case types.ToolCost:
		if tc.Cost == nil {
			return types.ToolCallResult{}, &types.ToolExecutionError{Tool: req.Tool, ContextKey: req.ContextKey}
		}
		return t.cost.Calculate(*tc.Cost)
	default:
		return types.ToolCallResult{}, &types.ToolExecutionError{Tool: req.Tool, ContextKey: req.ContextKey}
	}
}
