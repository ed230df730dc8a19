// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// CostCalculator totals a school's published cost-of-attendance components
// for a residency and housing scenario. Per R1.3, R4.4.
type CostCalculator struct {
	policies *PolicySet
}

// NewCostCalculator builds the calculator over loaded policy tables.
func NewCostCalculator(policies *PolicySet) *CostCalculator {
	return &CostCalculator{policies: policies}
}

// Calculate sums tuition (by residency), fees, housing (by arrangement),
// books, and personal expenses from the school's table. The result cites
// the school's published cost page. Per R4.4-R4.5.
func (c *CostCalculator) Calculate(scenario types.CostScenario) (types.ToolCallResult, error) {
	policy, err := c.policies.Cost(scenario.AwardYear)
	if err != nil {
		return types.ToolCallResult{}, err
	}
	school, ok := policy.Schools[scenario.SchoolID]
	if !ok {
		return types.ToolCallResult{}, fmt.Errorf("no cost table for school %q in award year %q",
			scenario.SchoolID, policy.AwardYear)
	}

	arrangement := scenario.Arrangement
	if arrangement == "" {
		arrangement = types.LivingOnCampus
	}
	housing, ok := school.Housing[arrangement]
	if !ok {
		return types.ToolCallResult{}, fmt.Errorf("school %q has no %s housing figure",
			scenario.SchoolID, arrangement)
	}

	tuition := school.TuitionOutOfState
	residency := "out-of-state"
	if scenario.InState {
		tuition = school.TuitionInState
		residency = "in-state"
	}

	components := map[string]float64{
		"tuition":  tuition,
		"fees":     school.Fees,
		"housing":  housing,
		"books":    school.Books,
		"personal": school.Personal,
	}
	total := tuition + school.Fees + housing + school.Books + school.Personal

	var formula strings.Builder
	fmt.Fprintf(&formula, "%s %s tuition $%.0f + fees $%.0f + %s housing $%.0f + books $%.0f + personal $%.0f = $%.0f (%s)",
		school.Name, residency, tuition, school.Fees,
		strings.ReplaceAll(string(arrangement), "_", "-"), housing,
		school.Books, school.Personal, total, policy.AwardYear)

	return types.ToolCallResult{
		Tool:       types.ToolCost,
		Value:      total,
		Components: components,
		Formula:    formula.String(),
		Source:     types.NewCitation(school.SourceURL, time.Time{}, nil),
		Notes:      []string{fmt.Sprintf("published %s cost of attendance", policy.AwardYear)},
	}, nil
}
