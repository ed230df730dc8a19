// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// WriteReport writes the full JSON report to path. Per R5.1.
func WriteReport(report types.EvalReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WriteGateTable writes the human-readable run summary to w. Per R5.2.
func WriteGateTable(report types.EvalReport, w io.Writer) {
	fmt.Fprintf(w, "Evaluation run %s\n", report.RunID)
	fmt.Fprintf(w, "%d/%d queries passed (%.1f%%), average score %.2f/10\n\n",
		report.PassedQueries, report.TotalQueries, report.PassRate*100, report.AvgScore)

	fmt.Fprintf(w, "%-24s  %-8s  %-10s  %s\n", "Gate", "Value", "Threshold", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 56))

	names := make([]string, 0, len(report.HardGates))
	for name := range report.HardGates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g := report.HardGates[name]
		status := "PASS"
		if !g.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-24s  %-8.4f  %-10.4f  %s\n", name, g.Value, g.Threshold, status)
	}

	fmt.Fprintln(w)
	if report.AllGatesPassed {
		fmt.Fprintln(w, "All hard gates passed: ship-ready.")
	} else {
		fmt.Fprintln(w, "Hard gate failure: not ship-ready.")
	}
}
