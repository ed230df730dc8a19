// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"fmt"
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// buildComparison renders a pipe table across the institutions present in
// the working set. It reports false when fewer than two institutions are
// represented; a comparison of one thing is not a comparison. Per R3.
func buildComparison(results []types.RetrievalResult) (string, bool) {
	byInstitution := make(map[string][]types.RetrievalResult)
	var order []string
	for _, res := range results {
		inst := res.Meta.Institution
		if inst == "" {
			continue
		}
		if _, ok := byInstitution[inst]; !ok {
			order = append(order, inst)
		}
		byInstitution[inst] = append(byInstitution[inst], res)
	}
	if len(order) < 2 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("| Institution | Finding | Source |\n")
	b.WriteString("|-------------|---------|--------|\n")
	for _, inst := range order {
		for _, res := range byInstitution[inst] {
			src := ""
			if len(res.Citations) > 0 {
				src = res.Citations[0].URL
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n",
				pipeEscape(inst), pipeEscape(strings.TrimSpace(res.Text)), src)
		}
	}
	return strings.TrimRight(b.String(), "\n"), true
}

func pipeEscape(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "/")
}
