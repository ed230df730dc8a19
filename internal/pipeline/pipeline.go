// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates the answer flow: guardrails, retrieval,
// tool execution, synthesis, composition, and validation. The pipeline
// abstains rather than guess; the only error it returns is a retrieval
// transport failure.
// Implements: prd002-prd006 orchestration;
//
//	docs/ARCHITECTURE § Pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/internal/compose"
	"github.com/pdiddy/counsel-engine/internal/guard"
	"github.com/pdiddy/counsel-engine/internal/synthesis"
	"github.com/pdiddy/counsel-engine/internal/tools"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Retriever is the retrieval stage contract.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]types.RetrievalResult, error)
}

// Composer is the composition and citation-validation contract.
type Composer interface {
	Compose(query string, results []types.RetrievalResult, toolCalls []types.ToolCallResult, format types.OutputFormat) (string, []types.Citation)
	CheckCitations(text string, citationCount int) compose.CitationReport
}

// Synthesizer is the domain synthesis contract.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, results []types.RetrievalResult) (synthesis.Output, error)
}

// ToolRunner executes one identified calculator.
type ToolRunner interface {
	Execute(req types.ToolRequest, tc types.ToolContext) (types.ToolCallResult, error)
}

// Options selects per-query behavior.
type Options struct {
	// Format is the requested answer shape. Empty means plain text.
	Format types.OutputFormat

	// ToolContext supplies structured calculator inputs.
	ToolContext types.ToolContext
}

// Pipeline wires the stages together. All dependencies are injected at
// construction; the pipeline holds no global state.
type Pipeline struct {
	guards    *guard.Pipeline
	retriever Retriever
	toolkit   ToolRunner
	composer  Composer
	synth     Synthesizer
	plan      string
	log       *zap.Logger
}

// New builds a pipeline. A nil logger disables diagnostics.
func New(guards *guard.Pipeline, retriever Retriever, toolkit ToolRunner, composer Composer, synth Synthesizer, retrCfg types.RetrievalConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		guards:    guards,
		retriever: retriever,
		toolkit:   toolkit,
		composer:  composer,
		synth:     synth,
		plan: fmt.Sprintf("collections=%v max_per_collection=%d top_k=%d threshold=%.2f",
			retrCfg.Collections, retrCfg.MaxPerCollection, retrCfg.TopK, retrCfg.ScoreThreshold),
		log: log,
	}
}

// Answer runs one query through the full flow. Cancellation at any stage
// abstains with "request cancelled"; a partial answer is never returned.
// The error is non-nil only for a retrieval transport failure.
func (p *Pipeline) Answer(ctx context.Context, query string, opts Options) (types.AnswerResult, error) {
	format := opts.Format
	if format == "" {
		format = types.FormatText
	}

	if ctx.Err() != nil {
		return p.abstain(query, types.AbstainCancelled), nil
	}
	if res := p.guards.CheckTemporal(query); !res.OK {
		return p.abstain(query, res.Reason), nil
	}
	if res := p.guards.CheckEntityQuery(query); !res.OK {
		return p.abstain(query, res.Reason), nil
	}
	subjective := p.guards.FlagSubjective(query)

	results, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return p.abstain(query, types.AbstainCancelled), nil
		}
		var re *types.RetrievalError
		if errors.As(err, &re) {
			return types.AnswerResult{}, err
		}
		return types.AnswerResult{}, &types.RetrievalError{Err: err}
	}
	if ctx.Err() != nil {
		return p.abstain(query, types.AbstainCancelled), nil
	}
	if res := p.guards.CheckEntityResults(results); !res.OK {
		return p.abstain(query, res.Reason), nil
	}

	toolCalls := p.runTools(query, opts.ToolContext)

	var (
		text           string
		citations      []types.Citation
		recommendation *types.Recommendation
	)
	if subjective || synthesis.Comparative(query) {
		out, serr := p.synth.Synthesize(ctx, query, results)
		switch {
		case serr == nil:
			recommendation = out.Recommendation
			if format == types.FormatText {
				text, citations = out.Text, out.Citations
				text, citations = p.appendTools(text, citations, toolCalls)
			}
		case subjective:
			// Subjective question the engine cannot ground: decline.
			p.log.Info("synthesis declined subjective query", zap.Error(serr))
			return p.abstain(query, types.AbstainPersonal), nil
		default:
			// Comparative but factual: fall back to plain composition.
			p.log.Debug("synthesis unavailable, composing directly", zap.Error(serr))
		}
	}
	if text == "" {
		text, citations = p.composer.Compose(query, results, toolCalls, format)
	}

	if ctx.Err() != nil {
		return p.abstain(query, types.AbstainCancelled), nil
	}

	report := p.composer.CheckCitations(text, len(citations))
	if !report.OK {
		return p.abstain(query, report.Reason), nil
	}

	// Anti-fabrication invariant, checked immediately before returning:
	// no numeric claim leaves the pipeline without a citation behind it.
	if compose.HasUncitedNumbers(text, len(citations)) {
		return p.abstain(query, "numeric claims present with no citations to support them"), nil
	}

	return types.AnswerResult{
		Query:            query,
		AnswerText:       text,
		Citations:        citations,
		ToolCalls:        toolCalls,
		SchemaValid:      compose.CheckSchema(text, format),
		CitationCoverage: report.Coverage,
		RetrievalPlan:    p.plan,
		Recommendation:   recommendation,
	}, nil
}

// runTools executes every calculator the query triggers. A tool that
// cannot run is skipped, never fatal.
func (p *Pipeline) runTools(query string, tc types.ToolContext) []types.ToolCallResult {
	var out []types.ToolCallResult
	for _, req := range tools.IdentifyTools(query) {
		res, err := p.toolkit.Execute(req, tc)
		if err != nil {
			var te *types.ToolExecutionError
			if errors.As(err, &te) {
				p.log.Debug("tool skipped", zap.String("tool", string(te.Tool)))
			} else {
				p.log.Warn("tool failed", zap.String("tool", string(req.Tool)), zap.Error(err))
			}
			continue
		}
		out = append(out, res)
	}
	return out
}

// appendTools folds calculator results onto a synthesized answer.
func (p *Pipeline) appendTools(text string, citations []types.Citation, toolCalls []types.ToolCallResult) (string, []types.Citation) {
	if len(toolCalls) == 0 {
		return text, citations
	}
	seen := make(map[string]bool, len(citations))
	for _, cit := range citations {
		seen[cit.URL] = true
	}
	text += "\n\nCalculated results:\n"
	for _, tcr := range toolCalls {
		text += fmt.Sprintf("\n- %s: $%.2f\n  Derivation: %s\n  Source: %s\n",
			tcr.Tool, tcr.Value, tcr.Formula, tcr.Source.URL)
		if tcr.Source.URL != "" && !seen[tcr.Source.URL] {
			seen[tcr.Source.URL] = true
			citations = append(citations, tcr.Source)
		}
	}
	return text, citations
}

func (p *Pipeline) abstain(query, reason string) types.AnswerResult {
	return types.AnswerResult{
		Query:         query,
		ShouldAbstain: true,
		AbstainReason: reason,
		SchemaValid:   true,
		RetrievalPlan: p.plan,
	}
}
