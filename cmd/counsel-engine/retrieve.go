// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/counsel-engine/internal/retrieve"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the document store and show ranked, scored results",
	Long: `Retrieve runs the raw retrieval stage: the query fans out across the
configured collections, results are scored by similarity and source
authority, and the merged ranking is printed. Useful for inspecting what
an answer would be grounded on.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	log := buildLogger()
	defer log.Sync()

	cfg := loadConfig()
	querier, closer, err := buildStore(cfg.Store, log)
	if err != nil {
		return err
	}
	defer closer()

	retriever := retrieve.NewRetriever(querier, cfg.Retrieval, log)
	results, err := retriever.Retrieve(context.Background(), query)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	formatResultsTable(results)
	return nil
}

func formatResultsTable(results []types.RetrievalResult) {
	if len(results) == 0 {
		fmt.Println("No results above the score threshold.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-6s  %-14s  %-50s  %s\n",
		"Rank", "Score", "Collection", "Text", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, r := range results {
		text := strings.ReplaceAll(r.Text, "\n", " ")
		if len(text) > 50 {
			text = text[:47] + "..."
		}
		src := r.Meta.SourceURL
		if len(src) > 30 {
			src = src[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-6.2f  %-14s  %-50s  %s\n",
			i+1, r.Score, r.Collection, text, src)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
}

func init() {
	retrieveCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(retrieveCmd)
}
