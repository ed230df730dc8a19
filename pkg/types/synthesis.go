// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Domain is the closed set of synthesis routing domains. Classification is
// priority-based over a declared keyword table, not first-match substring
// checks. Per prd006-synthesis R1.
type Domain string

const (
	DomainNone           Domain = ""
	DomainBSMD           Domain = "bsmd"
	DomainResidency      Domain = "residency"
	DomainIntlAdmissions Domain = "intl_admissions"
	DomainIntlAid        Domain = "intl_aid"
	DomainAdmissions     Domain = "admissions"
	DomainAidMechanics   Domain = "aid_mechanics"
	DomainSchoolList     Domain = "school_list"
)

// ConfidenceLevel grades a recommendation. Per prd006-synthesis R4.2.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// SupportingFact pairs a factual statement with the citation backing it.
// Every supporting fact in a recommendation must carry a citation.
// Per prd006-synthesis R4.4.
type SupportingFact struct {
	Fact     string   `json:"fact" yaml:"fact"`
	Citation Citation `json:"citation" yaml:"citation"`
}

// Recommendation is the synthesis engine's comparative guidance block.
// Per prd006-synthesis R4.
type Recommendation struct {
	// Text is the recommendation statement.
	Text string `json:"recommendation_text" yaml:"recommendation_text"`

	// Confidence grades how well the retrieved evidence supports the text.
	Confidence ConfidenceLevel `json:"confidence_level" yaml:"confidence_level"`

	// TradeOffs lists explicit trade-offs between the compared options.
	TradeOffs []string `json:"trade_offs" yaml:"trade_offs"`

	// Caveats lists conditions under which the recommendation changes.
	Caveats []string `json:"caveats" yaml:"caveats"`

	// SupportingFacts back the recommendation; each carries a citation.
	SupportingFacts []SupportingFact `json:"supporting_facts" yaml:"supporting_facts"`

	// Alternatives names options outside the compared set worth a look.
	Alternatives []string `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}
