// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// AidIndexCalculator computes an estimated aid index from a household
// scenario using one award year's methodology table. Per R1.2, R4.1.
type AidIndexCalculator struct {
	policies *PolicySet
}

// NewAidIndexCalculator builds the calculator over loaded policy tables.
func NewAidIndexCalculator(policies *PolicySet) *AidIndexCalculator {
	return &AidIndexCalculator{policies: policies}
}

// Calculate runs the simplified federal methodology:
//
//	available income = AGI - income protection allowance
//	adjusted available income = available income + parent assets × parent rate
//	parent contribution = progressive brackets over AAI, split by number in college
//	student contribution = custodial assets × student rate
//
// The result carries the full derivation and the policy table's fixed
// citation. Per R4.1-R4.3.
func (c *AidIndexCalculator) Calculate(scenario types.AidScenario, awardYear string) (types.ToolCallResult, error) {
	policy, err := c.policies.Aid(awardYear)
	if err != nil {
		return types.ToolCallResult{}, err
	}
	if scenario.HouseholdSize < 1 {
		return types.ToolCallResult{}, fmt.Errorf("household size must be at least 1")
	}
	inCollege := scenario.InCollege
	if inCollege < 1 {
		inCollege = 1
	}

	ipa := policy.incomeProtectionFor(scenario.HouseholdSize)
	availableIncome := math.Max(0, scenario.AGI-ipa)

	parentAssets := scenario.Savings + scenario.Plan529
	parentAssetShare := parentAssets * policy.ParentAssetRate

	aai := availableIncome + parentAssetShare
	assessed := assessBrackets(aai, policy.Brackets)
	parentShare := assessed / float64(inCollege)

	studentShare := scenario.UTMA * policy.StudentAssetRate
	total := round2(parentShare + studentShare)

	var formula strings.Builder
	fmt.Fprintf(&formula, "income protection allowance for household of %d: $%.0f; ",
		scenario.HouseholdSize, ipa)
	fmt.Fprintf(&formula, "available income = $%.0f - $%.0f = $%.2f; ",
		scenario.AGI, ipa, availableIncome)
	fmt.Fprintf(&formula, "parent assets $%.0f × %.2f%% = $%.2f; ",
		parentAssets, policy.ParentAssetRate*100, parentAssetShare)
	fmt.Fprintf(&formula, "assessment of $%.2f via progressive brackets = $%.2f; ",
		aai, assessed)
	fmt.Fprintf(&formula, "divided by %d in college = $%.2f; ", inCollege, parentShare)
	fmt.Fprintf(&formula, "student assets $%.0f × %.0f%% = $%.2f",
		scenario.UTMA, policy.StudentAssetRate*100, studentShare)

	return types.ToolCallResult{
		Tool:  types.ToolAidIndex,
		Value: total,
		Components: map[string]float64{
			"parent_contribution":  round2(parentShare),
			"student_contribution": round2(studentShare),
		},
		Formula: formula.String(),
		Source:  types.NewCitation(policy.SourceURL, time.Time{}, nil),
		Notes:   policy.Notes,
	}, nil
}

// incomeProtectionFor looks up the allowance by household size, extending
// the table linearly beyond its largest entry.
func (p AidPolicy) incomeProtectionFor(householdSize int) float64 {
	if v, ok := p.IncomeProtection[householdSize]; ok {
		return v
	}
	sizes := make([]int, 0, len(p.IncomeProtection))
	for size := range p.IncomeProtection {
		sizes = append(sizes, size)
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Ints(sizes)
	smallest, largest := sizes[0], sizes[len(sizes)-1]
	if householdSize < smallest {
		return p.IncomeProtection[smallest]
	}
	return p.IncomeProtection[largest] + float64(householdSize-largest)*p.IncomeProtectionStep
}

// assessBrackets applies the progressive bands to the adjusted available
// income. A zero upper bound marks the unbounded top band.
func assessBrackets(amount float64, brackets []Bracket) float64 {
	var (
		assessed float64
		lower    float64
	)
	for _, b := range brackets {
		if amount <= lower {
			break
		}
		upper := b.Upper
		if upper == 0 || upper > amount {
			upper = amount
		}
		assessed += (upper - lower) * b.Rate
		lower = upper
		if b.Upper == 0 {
			break
		}
	}
	return assessed
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
