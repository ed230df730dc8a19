// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Defaults applied when the config leaves a knob at zero.
const (
	defaultMinRecords   = 2
	defaultTopUpResults = 4
)

// DomainRetriever tops up a synthesis pass with records filtered to one
// domain tag. Satisfied by the retriever.
type DomainRetriever interface {
	RetrieveDomain(ctx context.Context, query string, domain types.Domain, n int) ([]types.RetrievalResult, error)
}

// Output is a synthesized answer: text with source markers, the citations
// backing it, and an optional recommendation block.
type Output struct {
	Text           string
	Citations      []types.Citation
	Recommendation *types.Recommendation
}

// Engine generates domain-aware answers from retrieval results.
type Engine struct {
	retriever DomainRetriever
	cfg       types.SynthesisConfig
	log       *zap.Logger
}

// NewEngine builds a synthesis engine. A nil logger disables diagnostics.
func NewEngine(retriever DomainRetriever, cfg types.SynthesisConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MinRecords <= 0 {
		cfg.MinRecords = defaultMinRecords
	}
	if cfg.TopUpResults <= 0 {
		cfg.TopUpResults = defaultTopUpResults
	}
	return &Engine{retriever: retriever, cfg: cfg, log: log}
}

// Synthesize classifies the query, tops up domain-tagged records when the
// generic retrieval came up short, and generates a comparison and
// recommendation when the query calls for them. Generator panics are
// recovered into a SynthesisFailure so a bad record can never crash the
// pipeline. Per R2-R5.
func (e *Engine) Synthesize(ctx context.Context, query string, results []types.RetrievalResult) (out Output, err error) {
	domain := Classify(query)

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("synthesis generator panicked",
				zap.String("domain", string(domain)), zap.Any("panic", r))
			out = Output{}
			err = &types.SynthesisFailure{
				Domain: domain,
				Reason: "generator failure",
				Err:    fmt.Errorf("recovered: %v", r),
			}
		}
	}()

	working := results
	if domain != types.DomainNone {
		tagged := filterDomain(results, domain)
		if len(tagged) < e.cfg.MinRecords && e.retriever != nil {
			extra, rerr := e.retriever.RetrieveDomain(ctx, query, domain, e.cfg.TopUpResults)
			if rerr != nil {
				e.log.Warn("domain top-up failed", zap.String("domain", string(domain)), zap.Error(rerr))
			} else {
				tagged = mergeResults(tagged, extra)
			}
		}
		if len(tagged) >= e.cfg.MinRecords {
			working = mergeResults(tagged, results)
		}
	}

	if len(working) < e.cfg.MinRecords {
		return Output{}, &types.SynthesisFailure{
			Domain: domain,
			Reason: fmt.Sprintf("only %d grounded record(s), need %d", len(working), e.cfg.MinRecords),
		}
	}

	return e.generate(query, domain, working)
}

// generate renders the answer: facts with sources, a comparison table when
// the query compares entities, and a recommendation when the query asks
// for one. Per R3-R4.
func (e *Engine) generate(query string, domain types.Domain, working []types.RetrievalResult) (Output, error) {
	var b strings.Builder
	b.WriteString("Based on official sources:\n\n")
	for i, res := range working {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(res.Text))
		for _, cit := range res.Citations {
			if cit.LastVerified.IsZero() {
				fmt.Fprintf(&b, "   Source: %s\n", cit.URL)
			} else {
				fmt.Fprintf(&b, "   Source: %s (last verified %s)\n",
					cit.URL, cit.LastVerified.Format("2006-01-02"))
			}
		}
		b.WriteString("\n")
	}

	if isComparative(query) {
		if table, ok := buildComparison(working); ok {
			b.WriteString("Comparison:\n\n")
			b.WriteString(table)
			b.WriteString("\n\n")
		}
	}

	var rec *types.Recommendation
	if seeksRecommendation(query) {
		rec = buildRecommendation(domain, working)
		writeRecommendation(&b, rec)
	}

	return Output{
		Text:           strings.TrimRight(b.String(), "\n"),
		Citations:      collectCitations(working),
		Recommendation: rec,
	}, nil
}

func writeRecommendation(b *strings.Builder, rec *types.Recommendation) {
	fmt.Fprintf(b, "Recommendation (%s confidence): %s\n", rec.Confidence, rec.Text)
	for _, t := range rec.TradeOffs {
		fmt.Fprintf(b, "- Trade-off: %s\n", t)
	}
	for _, c := range rec.Caveats {
		fmt.Fprintf(b, "- Caveat: %s\n", c)
	}
	for _, alt := range rec.Alternatives {
		fmt.Fprintf(b, "- Also consider: %s\n", alt)
	}
}

// comparativePhrases signal a question weighing two or more options.
var comparativePhrases = []string{
	" vs ", " vs. ", " versus ", "compare", "comparison", "better",
	"difference between", " or ",
}

// Comparative reports whether the query weighs options against each
// other, which makes it a synthesis candidate even when it is not
// subjective. Per R3.1.
func Comparative(query string) bool { return isComparative(query) }

func isComparative(query string) bool {
	q := strings.ToLower(query)
	for _, p := range comparativePhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// recommendationPhrases signal the caller wants guidance, not just facts.
// Comparison wording counts: a query weighing named options gets the
// trade-offs spelled out, not just the facts side by side.
var recommendationPhrases = []string{
	"should i", "should my", "should we", "recommend", "which is better",
	"what's better", "what is better", "right for me", "worth it",
	"is it worth", "best", "strategy", "decision", "compare",
}

func seeksRecommendation(query string) bool {
	q := strings.ToLower(query)
	for _, p := range recommendationPhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

func filterDomain(results []types.RetrievalResult, domain types.Domain) []types.RetrievalResult {
	var out []types.RetrievalResult
	for _, res := range results {
		if res.Meta.Domain == domain {
			out = append(out, res)
		}
	}
	return out
}

// mergeResults appends extras not already present, keyed by source URL and
// text, preserving the order of the primary slice.
func mergeResults(primary, extra []types.RetrievalResult) []types.RetrievalResult {
	seen := make(map[string]bool, len(primary))
	key := func(r types.RetrievalResult) string { return r.Meta.SourceURL + "\x00" + r.Text }
	out := append([]types.RetrievalResult(nil), primary...)
	for _, r := range primary {
		seen[key(r)] = true
	}
	for _, r := range extra {
		if !seen[key(r)] {
			seen[key(r)] = true
			out = append(out, r)
		}
	}
	return out
}

func collectCitations(results []types.RetrievalResult) []types.Citation {
	seen := make(map[string]bool)
	var out []types.Citation
	for _, res := range results {
		for _, cit := range res.Citations {
			if cit.URL == "" || seen[cit.URL] {
				continue
			}
			seen[cit.URL] = true
			out = append(out, cit)
		}
	}
	return out
}
