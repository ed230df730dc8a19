// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis classifies questions into counseling domains and
// generates comparative, recommendation-bearing answers grounded in
// retrieved records.
// Implements: prd006-synthesis (R1-R5);
//
//	docs/ARCHITECTURE § Synthesis.
package synthesis

import (
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// exclusion suppresses a keyword hit when every occurrence of the keyword
// sits inside the masking phrase. Exclusions are data, not control flow:
// "cs" inside "css profile" is not a computer-science hit.
type exclusion struct {
	keyword string
	inside  string
}

// domainRule declares one domain's trigger vocabulary and priority. A
// query matching several domains dispatches to the highest priority.
type domainRule struct {
	domain     types.Domain
	priority   int
	keywords   []string
	exclusions []exclusion
}

// domainRules is ordered by descending priority; Classify depends on that.
var domainRules = []domainRule{
	{
		domain:   types.DomainBSMD,
		priority: 100,
		keywords: []string{
			"bs/md", "bsmd", "ba/md", "direct medical", "plme",
			"accelerated medical", "guaranteed medical", "7-year medical",
			"8-year medical", "combined medical",
		},
	},
	{
		domain:   types.DomainResidency,
		priority: 90,
		keywords: []string{
			"residency", "in-state", "out-of-state", "domicile",
			"reciprocity", "wue", "tuition exchange", "state resident",
		},
		exclusions: []exclusion{
			// Medical residency questions belong to the program domains.
			{keyword: "residency", inside: "medical residency"},
		},
	},
	{
		domain:   types.DomainIntlAdmissions,
		priority: 85,
		keywords: []string{
			"international student", "international applicant", "visa",
			"i-20", "toefl", "ielts", "f-1",
		},
		exclusions: []exclusion{
			// Aid questions about international students route to intl_aid.
			{keyword: "international student", inside: "aid for international students"},
			{keyword: "international student", inside: "scholarships for international students"},
		},
	},
	{
		domain:   types.DomainIntlAid,
		priority: 80,
		keywords: []string{
			"aid for international", "international student aid",
			"international financial aid", "need-blind for international",
			"scholarships for international", "css profile international",
		},
	},
	{
		domain:   types.DomainAdmissions,
		priority: 70,
		keywords: []string{
			"admission", "acceptance rate", "early decision", "early action",
			"application deadline", "internal transfer", "articulation",
			"transfer credit", "sat", "act score", "gpa",
		},
		exclusions: []exclusion{
			{keyword: "sat", inside: "saturday"},
		},
	},
	{
		domain:   types.DomainAidMechanics,
		priority: 60,
		keywords: []string{
			"sai", "efc", "fafsa", "css profile", "financial aid",
			"net price", "work-study", "529", "utma", "verification",
			"cost of attendance",
		},
		exclusions: []exclusion{
			{keyword: "sai", inside: "said"},
		},
	},
	{
		domain:   types.DomainSchoolList,
		priority: 50,
		keywords: []string{
			"school list", "college list", "safety school", "target school",
			"reach school", "where should i apply", "build a list",
		},
	},
}

// Classify returns the highest-priority domain whose vocabulary appears in
// the query, or DomainNone. Per R1.
func Classify(query string) types.Domain {
	q := strings.ToLower(query)
	for _, rule := range domainRules {
		if rule.score(q) > 0 {
			return rule.domain
		}
	}
	return types.DomainNone
}

// score counts keywords with at least one unmasked occurrence.
func (r domainRule) score(query string) int {
	hits := 0
	for _, kw := range r.keywords {
		if countOutside(query, kw, r.exclusionsFor(kw)) > 0 {
			hits++
		}
	}
	return hits
}

func (r domainRule) exclusionsFor(keyword string) []string {
	var masks []string
	for _, ex := range r.exclusions {
		if ex.keyword == keyword {
			masks = append(masks, ex.inside)
		}
	}
	return masks
}

// countOutside counts occurrences of keyword in query that do not fall
// within any occurrence of a masking phrase.
func countOutside(query, keyword string, masks []string) int {
	type span struct{ start, end int }
	var masked []span
	for _, m := range masks {
		for i := 0; ; {
			j := strings.Index(query[i:], m)
			if j < 0 {
				break
			}
			start := i + j
			masked = append(masked, span{start, start + len(m)})
			i = start + 1
		}
	}

	count := 0
	for i := 0; ; {
		j := strings.Index(query[i:], keyword)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(keyword)
		inside := false
		for _, s := range masked {
			if start >= s.start && end <= s.end {
				inside = true
				break
			}
		}
		if !inside {
			count++
		}
		i = start + 1
	}
	return count
}
