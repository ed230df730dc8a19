// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/counsel-engine/internal/tools"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

var calcCmd = &cobra.Command{
	Use:   "calc [scenario.yaml]",
	Short: "Run a calculator directly from a YAML scenario file",
	Long: `Calc runs the deterministic calculators against a scenario file without
going through retrieval. The file holds an aid_scenario, a cost_scenario, or
both; each present scenario produces one calculator result with its full
derivation and policy citation.`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func runCalc(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	tc, err := loadToolContext(args[0])
	if err != nil {
		return err
	}
	if tc.Aid == nil && tc.Cost == nil {
		return fmt.Errorf("scenario file has neither aid_scenario nor cost_scenario")
	}

	cfg := loadConfig()
	policies, err := tools.LoadPolicies(cfg.Tools.PolicyDir, cfg.Tools.AwardYear)
	if err != nil {
		return err
	}
	kit := tools.NewToolkit(policies)

	var results []types.ToolCallResult
	if tc.Aid != nil {
		res, err := kit.Execute(types.ToolRequest{Tool: types.ToolAidIndex, ContextKey: "aid"}, tc)
		if err != nil {
			return err
		}
		results = append(results, res)
	}
	if tc.Cost != nil {
		res, err := kit.Execute(types.ToolRequest{Tool: types.ToolCost, ContextKey: "cost"}, tc)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, res := range results {
		fmt.Printf("%s: $%.2f\n", res.Tool, res.Value)
		names := make([]string, 0, len(res.Components))
		for name := range res.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: $%.2f\n", name, res.Components[name])
		}
		fmt.Printf("  Derivation: %s\n", res.Formula)
		fmt.Printf("  Source: %s\n", res.Source.URL)
		for _, note := range res.Notes {
			fmt.Printf("  Note: %s\n", note)
		}
		fmt.Println()
	}
	return nil
}

func init() {
	calcCmd.Flags().Bool("json", false, "output calculator results as JSON")

	rootCmd.AddCommand(calcCmd)
}
