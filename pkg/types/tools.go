// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AidScenario is the structured input for the aid-index calculator.
// All amounts are annual dollars. Per prd004-tools R2.1.
type AidScenario struct {
	// AGI is the parents' adjusted gross income.
	AGI float64 `json:"agi" yaml:"agi"`

	// HouseholdSize counts people supported by the household.
	HouseholdSize int `json:"household_size" yaml:"household_size"`

	// InCollege counts household members enrolled in college.
	InCollege int `json:"in_college" yaml:"in_college"`

	// Savings is parent cash, checking, and savings.
	Savings float64 `json:"savings" yaml:"savings"`

	// Plan529 is the balance of parent-owned 529 plans.
	Plan529 float64 `json:"plan_529" yaml:"plan_529"`

	// UTMA is the balance of student-owned custodial accounts, assessed at
	// the student asset rate.
	UTMA float64 `json:"utma" yaml:"utma"`
}

// LivingArrangement selects the housing component of a cost scenario.
type LivingArrangement string

const (
	LivingOnCampus  LivingArrangement = "on_campus"
	LivingOffCampus LivingArrangement = "off_campus"
	LivingCommuter  LivingArrangement = "commuter"
)

// CostScenario is the structured input for the cost-of-attendance
// calculator. Per prd004-tools R2.2.
type CostScenario struct {
	// SchoolID keys into the cost policy table.
	SchoolID string `json:"school_id" yaml:"school_id"`

	// AwardYear selects the policy table version (e.g. "2026-27").
	// Empty uses the toolkit default.
	AwardYear string `json:"award_year,omitempty" yaml:"award_year,omitempty"`

	// InState selects resident tuition.
	InState bool `json:"in_state" yaml:"in_state"`

	// Arrangement selects the housing component. Empty means on campus.
	Arrangement LivingArrangement `json:"arrangement,omitempty" yaml:"arrangement,omitempty"`
}
