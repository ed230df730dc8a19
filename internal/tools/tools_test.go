// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

func loadEmbedded(t *testing.T) *PolicySet {
	t.Helper()
	set, err := LoadPolicies("", "")
	require.NoError(t, err)
	return set
}

func TestLoadPoliciesEmbedded(t *testing.T) {
	set := loadEmbedded(t)
	assert.Equal(t, "2026-27", set.DefaultYear())

	aid, err := set.Aid("")
	require.NoError(t, err)
	assert.Equal(t, "https://studentaid.gov/aid-estimator/", aid.SourceURL)

	cost, err := set.Cost("2026-27")
	require.NoError(t, err)
	assert.Contains(t, cost.Schools, "stateu")

	_, err = set.Aid("1999-00")
	assert.Error(t, err)
}

func TestLoadPoliciesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	src, err := embeddedPolicies.ReadFile("policydata/aid_2026-27.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "aid_2026-27.yaml"), src, 0o644))

	set, err := LoadPolicies(dir, "")
	require.NoError(t, err)
	_, err = set.Aid("2026-27")
	assert.NoError(t, err)
	_, err = set.Cost("2026-27")
	assert.Error(t, err, "directory had no cost table")
}

func TestAidIndexCalculation(t *testing.T) {
	calc := NewAidIndexCalculator(loadEmbedded(t))
	scenario := types.AidScenario{
		AGI:           165000,
		HouseholdSize: 5,
		InCollege:     3,
		Savings:       50000,
		Plan529:       80000,
		UTMA:          25000,
	}

	res, err := calc.Calculate(scenario, "2026-27")
	require.NoError(t, err)

	// Available income 165000-42320=122680; parent assets 130000 at 5.64%
	// add 7332; brackets assess 130012 to 53105.64; divided by 3 in
	// college is 17701.88; student assets add 25000 at 20%.
	assert.InDelta(t, 22701.88, res.Value, 0.01)
	assert.InDelta(t, 17701.88, res.Components["parent_contribution"], 0.01)
	assert.InDelta(t, 5000.00, res.Components["student_contribution"], 0.01)
	assert.Equal(t, types.ToolAidIndex, res.Tool)
	assert.Equal(t, "https://studentaid.gov/aid-estimator/", res.Source.URL)
	assert.NotEmpty(t, res.Formula)
	assert.NotEmpty(t, res.Notes)
}

func TestAidIndexReproducible(t *testing.T) {
	calc := NewAidIndexCalculator(loadEmbedded(t))
	scenario := types.AidScenario{AGI: 92000, HouseholdSize: 4, InCollege: 2, Savings: 18000}

	first, err := calc.Calculate(scenario, "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := calc.Calculate(scenario, "")
		require.NoError(t, err)
		assert.Equal(t, first.Value, again.Value)
		assert.Equal(t, first.Formula, again.Formula)
	}
}

func TestAidIndexLargeHousehold(t *testing.T) {
	calc := NewAidIndexCalculator(loadEmbedded(t))
	// Household of 8 extends the allowance table: 49520 + 2*5020 = 59560,
	// which exceeds the income, so only student assets contribute.
	res, err := calc.Calculate(types.AidScenario{
		AGI: 55000, HouseholdSize: 8, InCollege: 1, UTMA: 10000,
	}, "")
	require.NoError(t, err)
	assert.InDelta(t, 2000.00, res.Value, 0.01)
}

func TestAidIndexRejectsEmptyHousehold(t *testing.T) {
	calc := NewAidIndexCalculator(loadEmbedded(t))
	_, err := calc.Calculate(types.AidScenario{AGI: 50000}, "")
	assert.Error(t, err)
}

func TestCostCalculation(t *testing.T) {
	calc := NewCostCalculator(loadEmbedded(t))

	res, err := calc.Calculate(types.CostScenario{
		SchoolID: "stateu", InState: true, Arrangement: types.LivingOnCampus,
	})
	require.NoError(t, err)
	assert.InDelta(t, 29772, res.Value, 0.01)
	assert.InDelta(t, 11260, res.Components["tuition"], 0.01)
	assert.Contains(t, res.Formula, "in-state")
	assert.Equal(t, "https://stateu.edu/financial-aid/cost-of-attendance", res.Source.URL)

	res, err = calc.Calculate(types.CostScenario{
		SchoolID: "lakeside", Arrangement: types.LivingOffCampus,
	})
	require.NoError(t, err)
	assert.InDelta(t, 77600, res.Value, 0.01)
}

func TestCostUnknownSchool(t *testing.T) {
	calc := NewCostCalculator(loadEmbedded(t))
	_, err := calc.Calculate(types.CostScenario{SchoolID: "hogwarts"})
	assert.Error(t, err)
}

func TestIdentifyTools(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []types.ToolName
	}{
		{"sai token", "How is my SAI calculated for 2026-27?", []types.ToolName{types.ToolAidIndex}},
		{"said is not sai", "She said the deadline already passed.", nil},
		{"coa phrase", "What is the cost of attendance at State University?", []types.ToolName{types.ToolCost}},
		{"bare cost word", "What is the cost for an out-of-state student at UCLA?", []types.ToolName{types.ToolCost}},
		{"costume is not cost", "Where is the costume shop on campus?", nil},
		{"tuition word", "How much is out-of-state tuition?", []types.ToolName{types.ToolCost}},
		{"both", "With our FAFSA numbers, what net price should we expect?", []types.ToolName{types.ToolAidIndex, types.ToolCost}},
		{"neither", "What GPA does the internal transfer require?", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs := IdentifyTools(tt.query)
			var got []types.ToolName
			for _, r := range reqs {
				got = append(got, r.Tool)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToolkitExecuteSkipsMissingContext(t *testing.T) {
	kit := NewToolkit(loadEmbedded(t))

	_, err := kit.Execute(types.ToolRequest{Tool: types.ToolAidIndex, ContextKey: "aid"}, types.ToolContext{})
	var te *types.ToolExecutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.ToolAidIndex, te.Tool)

	res, err := kit.Execute(types.ToolRequest{Tool: types.ToolCost, ContextKey: "cost"}, types.ToolContext{
		Cost: &types.CostScenario{SchoolID: "stateu", InState: true},
	})
	require.NoError(t, err)
	assert.Greater(t, res.Value, 0.0)
}
