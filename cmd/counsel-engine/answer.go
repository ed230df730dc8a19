// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/counsel-engine/internal/genai"
	"github.com/pdiddy/counsel-engine/internal/pipeline"
	"github.com/pdiddy/counsel-engine/pkg/types"
	"go.yaml.in/yaml/v3"
)

var answerCmd = &cobra.Command{
	Use:   "answer [question]",
	Short: "Answer one question through the full guarded pipeline",
	Long: `Answer runs a question through guardrails, retrieval, calculators, and
composition, and prints the grounded answer or the abstain reason. Structured
output shapes are selected with --format; calculator inputs are supplied as a
YAML scenario file with --tool-context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnswer,
}

func runAnswer(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	format, _ := cmd.Flags().GetString("format")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	generate, _ := cmd.Flags().GetBool("generate")
	contextFile, _ := cmd.Flags().GetString("tool-context")

	toolContext, err := loadToolContext(contextFile)
	if err != nil {
		return err
	}

	log := buildLogger()
	defer log.Sync()

	cfg := loadConfig()
	p, closer, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer closer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := p.Answer(ctx, query, pipeline.Options{
		Format:      types.OutputFormat(format),
		ToolContext: toolContext,
	})
	if err != nil {
		return err
	}

	if generate && !result.ShouldAbstain {
		client := genai.NewClient(cfg.Generation, log)
		prompt := fmt.Sprintf("Rephrase the following grounded answer as clear prose. Keep every citation and figure exactly as given.\n\n%s", result.AnswerText)
		if text, gerr := client.Generate(ctx, prompt); gerr == nil {
			result.AnswerText = text
		} else {
			fmt.Fprintf(os.Stderr, "warning: generation unavailable, using composed answer: %v\n", gerr)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.ShouldAbstain {
		fmt.Printf("Declined to answer: %s\n", result.AbstainReason)
		return nil
	}
	fmt.Println(result.AnswerText)
	if len(result.Citations) > 0 {
		fmt.Printf("\n%d citation(s), coverage %.0f%%\n", len(result.Citations), result.CitationCoverage*100)
	}
	return nil
}

// loadToolContext reads calculator inputs from a YAML scenario file.
func loadToolContext(path string) (types.ToolContext, error) {
	if path == "" {
		return types.ToolContext{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ToolContext{}, fmt.Errorf("reading tool context: %w", err)
	}
	var tc types.ToolContext
	if err := yaml.Unmarshal(data, &tc); err != nil {
		return types.ToolContext{}, fmt.Errorf("parsing tool context: %w", err)
	}
	return tc, nil
}

func init() {
	answerCmd.Flags().String("format", "text", "answer shape: text, table, json, or decision_tree")
	answerCmd.Flags().String("tool-context", "", "YAML file with calculator scenarios (aid_scenario, cost_scenario)")
	answerCmd.Flags().Bool("json", false, "print the full result object as JSON")
	answerCmd.Flags().Bool("generate", false, "rephrase the composed answer through the generation endpoint")

	rootCmd.AddCommand(answerCmd)
}
