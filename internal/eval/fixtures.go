// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package eval runs the fixed query battery through the pipeline and
// grades the outcome against hard ship gates.
// Implements: prd007-evaluation (R1-R5);
//
//	docs/ARCHITECTURE § Evaluation.
package eval

import (
	_ "embed"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

//go:embed fixtures/default.yaml
var defaultFixtures []byte

// LoadFixtures returns the query battery: the embedded default set, or the
// YAML file at path when given. Per R1.2.
func LoadFixtures(path string) ([]types.EvalQuery, error) {
	data := defaultFixtures
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading fixtures: %w", err)
		}
	}

	var queries []types.EvalQuery
	if err := yaml.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("fixture battery is empty")
	}

	seen := make(map[string]bool, len(queries))
	for _, q := range queries {
		switch {
		case q.ID == "":
			return nil, fmt.Errorf("fixture with empty id (query %q)", q.Query)
		case q.Query == "":
			return nil, fmt.Errorf("fixture %s has no query text", q.ID)
		case seen[q.ID]:
			return nil, fmt.Errorf("duplicate fixture id %s", q.ID)
		}
		seen[q.ID] = true
	}
	return queries, nil
}
