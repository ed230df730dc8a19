// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pdiddy/counsel-engine/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the evaluation battery against the hard ship gates",
	Long: `Eval runs the fixed query battery through the full pipeline and measures
the four hard gates: citation coverage, fabricated-number rate, structure
validity, and abstain correctness. All four must pass; a failing gate exits
nonzero. The full JSON report is written with --report.`,
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	fixturesPath, _ := cmd.Flags().GetString("fixtures")

	log := buildLogger()
	defer log.Sync()

	cfg := loadConfig()
	if reportPath == "" {
		reportPath = cfg.Eval.ReportPath
	}
	if fixturesPath != "" {
		cfg.Eval.FixturesPath = fixturesPath
	}

	p, closer, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer closer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	harness := eval.NewHarness(p, cfg.Eval, log)
	report, err := harness.Run(ctx)
	if err != nil {
		return err
	}

	eval.WriteGateTable(report, os.Stdout)

	if reportPath != "" {
		if err := eval.WriteReport(report, reportPath); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", reportPath)
	}

	if !report.AllGatesPassed {
		return fmt.Errorf("hard gate failure")
	}
	return nil
}

func init() {
	evalCmd.Flags().String("report", "", "write the full JSON report to this path")
	evalCmd.Flags().String("fixtures", "", "override the embedded fixture battery with a YAML file")

	rootCmd.AddCommand(evalCmd)
}
