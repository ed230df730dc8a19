// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// predictionPhrases are question shapes that ask for an outcome prediction
// rather than a policy fact. Matched on the lowercased query. Per R1.1.
var predictionPhrases = []string{
	"what are my chances",
	"what are my odds",
	"will i get in",
	"will i get accepted",
	"will i be accepted",
	"will i be admitted",
	"am i going to get in",
	"how likely am i",
	"predict my",
	"predict whether",
	"guarantee admission",
	"guarantee acceptance",
}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// futureRe catches future-tense shapes that carry no explicit year:
// "predict ...", "... the future", and "will <subject> be". Per R1.1.
var futureRe = regexp.MustCompile(`\bpredict\b|\bfuture\b|\bwill\s+(?:\w+\s+){0,4}be\b`)

// CheckTemporal fails queries that ask for a prediction of a future outcome
// or reference a calendar year the engine has no data for. The next
// calendar year is allowed: application cycles legitimately name it.
// Per R1.
func (p *Pipeline) CheckTemporal(query string) Result {
	q := strings.ToLower(query)
	for _, phrase := range predictionPhrases {
		if strings.Contains(q, phrase) {
			return fail(types.AbstainFuture)
		}
	}
	if futureRe.MatchString(q) {
		return fail(types.AbstainFuture)
	}
	for _, m := range yearRe.FindAllString(q, -1) {
		year, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if year > p.cfg.CurrentYear+1 {
			return fail(types.AbstainFuture)
		}
	}
	return pass()
}
