// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/internal/compose"
	"github.com/pdiddy/counsel-engine/internal/guard"
	"github.com/pdiddy/counsel-engine/internal/pipeline"
	"github.com/pdiddy/counsel-engine/internal/retrieve"
	"github.com/pdiddy/counsel-engine/internal/store"
	"github.com/pdiddy/counsel-engine/internal/synthesis"
	"github.com/pdiddy/counsel-engine/internal/tools"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

func init() {
	viper.SetDefault("store.backend", "sqlite")
	viper.SetDefault("store.index_path", "counsel/index.db")
	viper.SetDefault("retrieval.collections", []string{"institutions", "programs", "policies"})
	viper.SetDefault("retrieval.authoritative_domains", []string{"studentaid.gov", "ed.gov"})
}

// loadConfig assembles the pipeline configuration from viper and secrets.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Store: types.StoreConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("store.timeout"),
				UserAgent: "counsel-engine/" + version,
			},
			Backend:   types.StoreBackend(viper.GetString("store.backend")),
			BaseURL:   viper.GetString("store.base_url"),
			APIKey:    secretDefault("store-api-key", viper.GetString("store.api_key")),
			IndexPath: viper.GetString("store.index_path"),
			SeedPath:  viper.GetString("store.seed_path"),
		},
		Retrieval: types.RetrievalConfig{
			Collections:          viper.GetStringSlice("retrieval.collections"),
			MaxPerCollection:     viper.GetInt("retrieval.max_per_collection"),
			TopK:                 viper.GetInt("retrieval.top_k"),
			ScoreThreshold:       viper.GetFloat64("retrieval.score_threshold"),
			Workers:              viper.GetInt("retrieval.workers"),
			AuthoritativeDomains: viper.GetStringSlice("retrieval.authoritative_domains"),
		},
		Guards: types.GuardConfig{
			CurrentYear:    viper.GetInt("guards.current_year"),
			MinEntityScore: viper.GetFloat64("guards.min_entity_score"),
		},
		Tools: types.ToolsConfig{
			PolicyDir: viper.GetString("tools.policy_dir"),
			AwardYear: viper.GetString("tools.award_year"),
		},
		Compose: types.ComposeConfig{
			SentencesPerCitation: viper.GetInt("compose.sentences_per_citation"),
			CoverageTarget:       viper.GetFloat64("compose.coverage_target"),
		},
		Synthesis: types.SynthesisConfig{
			MinRecords:   viper.GetInt("synthesis.min_records"),
			TopUpResults: viper.GetInt("synthesis.top_up_results"),
		},
		Eval: types.EvalConfig{
			FixturesPath: viper.GetString("eval.fixtures_path"),
			Workers:      viper.GetInt("eval.workers"),
			ReportPath:   viper.GetString("eval.report_path"),
		},
		Generation: types.GenerationConfig{
			Endpoint: viper.GetString("generation.endpoint"),
			Model:    viper.GetString("generation.model"),
			APIKey:   secretDefault("generation-api-key", viper.GetString("generation.api_key")),
			Timeout:  viper.GetDuration("generation.timeout"),
		},
	}
}

// buildLogger returns the process logger. Diagnostics go to stderr so
// stdout stays clean for command output.
func buildLogger() *zap.Logger {
	log, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// buildStore opens the configured document store backend.
func buildStore(cfg types.StoreConfig, log *zap.Logger) (store.Querier, func() error, error) {
	switch cfg.Backend {
	case types.StoreHTTP:
		if cfg.BaseURL == "" {
			return nil, nil, fmt.Errorf("store.base_url required for the http backend")
		}
		return store.NewHTTPStore(cfg, log), func() error { return nil }, nil
	case types.StoreSQLite, "":
		s, err := store.NewSQLiteStore(cfg.IndexPath, log)
		if err != nil {
			return nil, nil, err
		}
		if cfg.SeedPath != "" {
			if _, err := s.SeedFromFile(context.Background(), cfg.SeedPath); err != nil {
				s.Close()
				return nil, nil, err
			}
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// buildPipeline wires the full answer pipeline from configuration. The
// returned closer releases the store.
func buildPipeline(cfg types.PipelineConfig, log *zap.Logger) (*pipeline.Pipeline, func() error, error) {
	querier, closer, err := buildStore(cfg.Store, log)
	if err != nil {
		return nil, nil, err
	}

	policies, err := tools.LoadPolicies(cfg.Tools.PolicyDir, cfg.Tools.AwardYear)
	if err != nil {
		closer()
		return nil, nil, err
	}

	retriever := retrieve.NewRetriever(querier, cfg.Retrieval, log)
	p := pipeline.New(
		guard.NewPipeline(cfg.Guards),
		retriever,
		tools.NewToolkit(policies),
		compose.NewComposer(cfg.Compose),
		synthesis.NewEngine(retriever, cfg.Synthesis, log),
		cfg.Retrieval,
		log,
	)
	return p, closer, nil
}
