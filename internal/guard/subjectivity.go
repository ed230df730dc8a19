// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guard

import "strings"

// subjectivePhrases mark questions that ask for a personal judgment rather
// than a fact. The flag reroutes to synthesis; only when synthesis cannot
// produce grounded guidance does the pipeline abstain. Per R4.
var subjectivePhrases = []string{
	"should i",
	"should my",
	"should we",
	"what's better",
	"what is better",
	"which is better",
	"which one is better",
	"is it better",
	"is it worth",
	"worth it",
	"recommend",
	"best choice for me",
	"right for me",
	"best fit for me",
}

// FlagSubjective reports whether the query asks for a personal judgment.
// This is a routing flag, not an abstain. Per R4.1-R4.2.
func (p *Pipeline) FlagSubjective(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range subjectivePhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
