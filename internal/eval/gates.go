// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"github.com/pdiddy/counsel-engine/internal/compose"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Hard gate names and thresholds. All four must pass for a ship-ready
// verdict; a failing gate is a blocking signal, not a warning. Per R4.
const (
	GateCitationCoverage = "citation_coverage"
	GateFabricatedRate   = "fabricated_number_rate"
	GateStructure        = "structure_validity"
	GateAbstain          = "abstain_correctness"

	gateCitationCoverage = 0.90
	gateFabricatedRate   = 0.02
	gateStructure        = 0.95
	gateAbstain          = 0.95
)

// computeGates measures the four hard gates over a finished run.
// Citation coverage is the fraction of answered queries carrying at least
// one citation, fabrication is measured over answered queries, structure
// validity only over answers whose fixture requested a structured format,
// and abstain correctness over the whole battery. Per R4.
func computeGates(queries []types.EvalQuery, results []types.EvalResult) map[string]types.GateResult {
	var (
		answered       int
		cited          int
		fabricated     int
		constrained    int
		structureValid int
		abstainCorrect int
	)
	for i, res := range results {
		ans := res.Answer
		if !ans.ShouldAbstain && ans.AnswerText != "" {
			answered++
			if len(ans.Citations) > 0 {
				cited++
			}
			if compose.HasUncitedNumbers(ans.AnswerText, len(ans.Citations)) {
				fabricated++
			}
			if queries[i].Format.Structured() {
				constrained++
				if ans.SchemaValid {
					structureValid++
				}
			}
		}
		if queries[i].ExpectAbstain == ans.ShouldAbstain {
			abstainCorrect++
		}
	}

	coverage, fabRate := 1.0, 0.0
	if answered > 0 {
		coverage = float64(cited) / float64(answered)
		fabRate = float64(fabricated) / float64(answered)
	}
	structure := 1.0
	if constrained > 0 {
		structure = float64(structureValid) / float64(constrained)
	}
	abstain := 0.0
	if len(results) > 0 {
		abstain = float64(abstainCorrect) / float64(len(results))
	}

	return map[string]types.GateResult{
		GateCitationCoverage: {Value: coverage, Threshold: gateCitationCoverage, Passed: coverage >= gateCitationCoverage},
		GateFabricatedRate:   {Value: fabRate, Threshold: gateFabricatedRate, Passed: fabRate <= gateFabricatedRate},
		GateStructure:        {Value: structure, Threshold: gateStructure, Passed: structure >= gateStructure},
		GateAbstain:          {Value: abstain, Threshold: gateAbstain, Passed: abstain >= gateAbstain},
	}
}

func allPassed(gates map[string]types.GateResult) bool {
	for _, g := range gates {
		if !g.Passed {
			return false
		}
	}
	return true
}
