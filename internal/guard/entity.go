// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package guard

import (
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

const defaultMinEntityScore = 0.5

// Abstain reasons for entity validation failures. Per R2.2.
const (
	reasonPlaceholderEntity = "the named institution or program could not be identified"
	reasonNoRecords         = "no records found for the requested institution or program"
	reasonWeakMatch         = "retrieved records do not match the requested institution or program closely enough"
)

// placeholderEntities are obviously fictional school names that show up in
// template questions. Matched on the lowercased query.
var placeholderEntities = []string{
	"university of xyz",
	"xyz university",
	"xyz college",
	"abc university",
	"abc college",
	"example university",
	"example college",
	"school x",
	"college x",
	"university x",
}

// CheckEntityQuery fails queries that name a placeholder institution
// before any retrieval is spent on them. Per R2.1.
func (p *Pipeline) CheckEntityQuery(query string) Result {
	q := strings.ToLower(query)
	for _, ent := range placeholderEntities {
		if strings.Contains(q, ent) {
			return fail(reasonPlaceholderEntity)
		}
	}
	return pass()
}

// CheckEntityResults fails when retrieval found nothing, or when the best
// result scores below the entity threshold and the answer would rest on a
// weak match. Per R2.1-R2.2.
func (p *Pipeline) CheckEntityResults(results []types.RetrievalResult) Result {
	if len(results) == 0 {
		return fail(reasonNoRecords)
	}
	best := results[0].Score
	for _, res := range results[1:] {
		if res.Score > best {
			best = res.Score
		}
	}
	if best < p.cfg.MinEntityScore {
		return fail(reasonWeakMatch)
	}
	return pass()
}
