// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// domainGuidance carries the declared trade-offs and caveats a
// recommendation in each domain must surface. The lists are fixed
// counseling knowledge, not derived from retrieval.
type domainGuidance struct {
	tradeOffs    []string
	caveats      []string
	alternatives []string
}

var guidanceByDomain = map[types.Domain]domainGuidance{
	types.DomainBSMD: {
		tradeOffs: []string{
			"a conditional medical school seat against a binding early commitment to one career path",
			"reduced admissions risk later against a more selective gate now",
		},
		caveats: []string{
			"progression requirements (GPA, MCAT waivers, interviews) vary by program and can be revoked",
			"leaving the program usually means reapplying to medical school with no advantage",
		},
		alternatives: []string{"a strong traditional premed path with broad school choice"},
	},
	types.DomainResidency: {
		tradeOffs: []string{
			"lower in-state cost against the burden of establishing and documenting domicile",
		},
		caveats: []string{
			"residency determinations are made by each institution and can differ for the same facts",
			"reciprocity and exchange programs cap enrollment and may exclude some majors",
		},
	},
	types.DomainIntlAdmissions: {
		tradeOffs: []string{
			"broader school choice against visa timing and documentation constraints",
		},
		caveats: []string{
			"visa processing times change; official consulate guidance controls",
		},
	},
	types.DomainIntlAid: {
		tradeOffs: []string{
			"need-aware admission odds against the aid budget requested",
		},
		caveats: []string{
			"very few institutions are need-blind for international applicants",
		},
	},
	types.DomainAdmissions: {
		tradeOffs: []string{
			"higher admit odds in an early round against a binding or restrictive commitment",
		},
		caveats: []string{
			"published rates mix applicant pools and do not predict individual outcomes",
		},
	},
	types.DomainAidMechanics: {
		tradeOffs: []string{
			"asset positioning before filing against liquidity the family may need",
		},
		caveats: []string{
			"formula figures are estimates; the award letter is the binding document",
		},
	},
	types.DomainSchoolList: {
		tradeOffs: []string{
			"list breadth against application quality and fee cost",
		},
		caveats: []string{
			"balance depends on an honest read of the academic record",
		},
	},
}

// genericGuidance backs recommendations when no domain matched.
var genericGuidance = domainGuidance{
	tradeOffs: []string{"cost and fit pull in different directions; weigh both against the records cited"},
	caveats:   []string{"the cited records may not reflect the family's full circumstances"},
}

// buildRecommendation assembles the guidance block: a grounded statement,
// declared trade-offs and caveats, supporting facts each carrying a
// citation, and a confidence grade from the evidence. Per R4.
func buildRecommendation(domain types.Domain, results []types.RetrievalResult) *types.Recommendation {
	guidance, ok := guidanceByDomain[domain]
	if !ok {
		guidance = genericGuidance
	}

	top := results[0]
	for _, res := range results[1:] {
		if res.Score > top.Score {
			top = res
		}
	}

	var facts []types.SupportingFact
	for _, res := range results {
		if len(res.Citations) == 0 {
			continue
		}
		facts = append(facts, types.SupportingFact{
			Fact:     res.Text,
			Citation: res.Citations[0],
		})
		if len(facts) == 3 {
			break
		}
	}

	text := "weigh the documented policies below before committing"
	if top.Meta.Institution != "" {
		text = fmt.Sprintf("the strongest documented evidence concerns %s; verify the cited policies against your own circumstances before committing", top.Meta.Institution)
	}

	return &types.Recommendation{
		Text:            text,
		Confidence:      gradeConfidence(results),
		TradeOffs:       guidance.tradeOffs,
		Caveats:         guidance.caveats,
		SupportingFacts: facts,
		Alternatives:    guidance.alternatives,
	}
}

// gradeConfidence grades the evidence: plenty of strong records is high,
// the bare minimum or weak scores is low. Per R4.2.
func gradeConfidence(results []types.RetrievalResult) types.ConfidenceLevel {
	var sum float64
	for _, res := range results {
		sum += res.Score
	}
	avg := sum / float64(len(results))
	switch {
	case len(results) >= 4 && avg >= 0.75:
		return types.ConfidenceHigh
	case len(results) >= 2 && avg >= 0.5:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
