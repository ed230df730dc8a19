// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/counsel-engine/internal/compose"
	"github.com/pdiddy/counsel-engine/internal/guard"
	"github.com/pdiddy/counsel-engine/internal/synthesis"
	"github.com/pdiddy/counsel-engine/internal/tools"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

type fakeRetriever struct {
	results []types.RetrievalResult
	err     error
}

func (f *fakeRetriever) Retrieve(context.Context, string) ([]types.RetrievalResult, error) {
	return f.results, f.err
}

func result(inst, text, url string, domain types.Domain, score float64) types.RetrievalResult {
	return types.RetrievalResult{
		Text: text,
		Meta: types.RecordMeta{
			Kind:        types.RecordPolicy,
			Institution: inst,
			Domain:      domain,
			SourceURL:   url,
		},
		Score:     score,
		Citations: []types.Citation{{URL: url, AuthorityScore: types.AuthorityDefault}},
	}
}

func newPipeline(t *testing.T, retriever Retriever) *Pipeline {
	t.Helper()
	policies, err := tools.LoadPolicies("", "")
	require.NoError(t, err)
	return New(
		guard.NewPipeline(types.GuardConfig{CurrentYear: 2026}),
		retriever,
		tools.NewToolkit(policies),
		compose.NewComposer(types.ComposeConfig{}),
		synthesis.NewEngine(nil, types.SynthesisConfig{}, nil),
		types.RetrievalConfig{Collections: []string{"policies"}},
		nil,
	)
}

func TestAnswerFactualQuery(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("", "The FAFSA priority deadline is March 1 for the 2026-27 year.", "https://studentaid.gov/fafsa", types.DomainAidMechanics, 0.9),
	}}
	p := newPipeline(t, retriever)

	ans, err := p.Answer(context.Background(), "What is the FAFSA priority deadline?", Options{})
	require.NoError(t, err)
	assert.False(t, ans.ShouldAbstain, "reason: %s", ans.AbstainReason)
	assert.Contains(t, ans.AnswerText, "Based on official sources")
	assert.Contains(t, ans.AnswerText, "Source: https://studentaid.gov/fafsa")
	assert.NotEmpty(t, ans.Citations)
	assert.True(t, ans.SchemaValid)
	assert.Greater(t, ans.CitationCoverage, 0.0)
	assert.NotEmpty(t, ans.RetrievalPlan)
}

func TestAnswerAbstainsOnPrediction(t *testing.T) {
	p := newPipeline(t, &fakeRetriever{})
	ans, err := p.Answer(context.Background(), "What are my chances of getting into the BS/MD program?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
	assert.Equal(t, types.AbstainFuture, ans.AbstainReason)
}

func TestAnswerAbstainsOnPlaceholderEntity(t *testing.T) {
	p := newPipeline(t, &fakeRetriever{})
	ans, err := p.Answer(context.Background(), "Does University of XYZ offer merit aid?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
}

func TestAnswerAbstainsOnWeakRetrieval(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("", "marginally related text", "https://x.edu/a", types.DomainNone, 0.2),
	}}
	p := newPipeline(t, retriever)
	ans, err := p.Answer(context.Background(), "What is the engineering internal transfer GPA?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
}

func TestAnswerSubjectiveWithEvidence(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("Union College", "The BS/MD track requires a 3.5 GPA each year.", "https://union.edu/bsmd", types.DomainBSMD, 0.9),
		result("Penn State", "The accelerated program spans seven years.", "https://psu.edu/bsmd", types.DomainBSMD, 0.8),
	}}
	p := newPipeline(t, retriever)

	ans, err := p.Answer(context.Background(), "Should I choose the Union College BS/MD or the Penn State program?", Options{})
	require.NoError(t, err)
	assert.False(t, ans.ShouldAbstain, "reason: %s", ans.AbstainReason)
	require.NotNil(t, ans.Recommendation)
	assert.NotEmpty(t, ans.Recommendation.TradeOffs)
	assert.Contains(t, ans.AnswerText, "| Institution |")
}

func TestAnswerSubjectiveWithoutEvidenceAbstainsPersonal(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("Union College", "The BS/MD track requires a 3.5 GPA each year.", "https://union.edu/bsmd", types.DomainBSMD, 0.9),
	}}
	p := newPipeline(t, retriever)

	ans, err := p.Answer(context.Background(), "Should I choose the BS/MD path?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
	assert.Equal(t, types.AbstainPersonal, ans.AbstainReason)
}

func TestAnswerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newPipeline(t, &fakeRetriever{})

	ans, err := p.Answer(ctx, "What is the FAFSA deadline?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
	assert.Equal(t, types.AbstainCancelled, ans.AbstainReason)
}

func TestAnswerRetrievalErrorPropagates(t *testing.T) {
	boom := &types.RetrievalError{Collection: "policies", Err: errors.New("connection refused")}
	p := newPipeline(t, &fakeRetriever{err: boom})

	_, err := p.Answer(context.Background(), "What is the FAFSA deadline?", Options{})
	var re *types.RetrievalError
	assert.ErrorAs(t, err, &re)
}

func TestAnswerRunsTriggeredTools(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("State University", "In-state tuition is published each spring.", "https://stateu.edu/tuition", types.DomainNone, 0.9),
	}}
	p := newPipeline(t, retriever)

	ans, err := p.Answer(context.Background(), "What is the cost of attendance at State University?", Options{
		ToolContext: types.ToolContext{
			Cost: &types.CostScenario{SchoolID: "stateu", InState: true},
		},
	})
	require.NoError(t, err)
	assert.False(t, ans.ShouldAbstain, "reason: %s", ans.AbstainReason)
	require.Len(t, ans.ToolCalls, 1)
	assert.Equal(t, types.ToolCost, ans.ToolCalls[0].Tool)
	assert.Contains(t, ans.AnswerText, "Calculated results:")
}

func TestAnswerSkipsToolWithoutContext(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("", "The SAI replaced the EFC starting with the 2024-25 FAFSA.", "https://studentaid.gov/sai", types.DomainAidMechanics, 0.9),
	}}
	p := newPipeline(t, retriever)

	ans, err := p.Answer(context.Background(), "How is the SAI calculated?", Options{})
	require.NoError(t, err)
	assert.False(t, ans.ShouldAbstain, "reason: %s", ans.AbstainReason)
	assert.Empty(t, ans.ToolCalls)
}

// strippingComposer renders answers without any source markers, to prove
// the pipeline refuses to ship them.
type strippingComposer struct {
	inner *compose.Composer
}

func (s *strippingComposer) Compose(query string, results []types.RetrievalResult, toolCalls []types.ToolCallResult, format types.OutputFormat) (string, []types.Citation) {
	return "Tuition is $11,260 per year.", nil
}

func (s *strippingComposer) CheckCitations(text string, citationCount int) compose.CitationReport {
	return s.inner.CheckCitations(text, citationCount)
}

func TestAnswerRefusesUncitedComposition(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("", "In-state tuition is $11,260.", "https://stateu.edu/tuition", types.DomainNone, 0.9),
	}}
	policies, err := tools.LoadPolicies("", "")
	require.NoError(t, err)
	p := New(
		guard.NewPipeline(types.GuardConfig{CurrentYear: 2026}),
		retriever,
		tools.NewToolkit(policies),
		&strippingComposer{inner: compose.NewComposer(types.ComposeConfig{})},
		synthesis.NewEngine(nil, types.SynthesisConfig{}, nil),
		types.RetrievalConfig{},
		nil,
	)

	ans, err := p.Answer(context.Background(), "What does attendance cost per year?", Options{})
	require.NoError(t, err)
	assert.True(t, ans.ShouldAbstain)
	assert.Contains(t, ans.AbstainReason, "citation")
}

func TestAnswerStructuredFormats(t *testing.T) {
	retriever := &fakeRetriever{results: []types.RetrievalResult{
		result("State University", "In-state tuition is $11,260.", "https://stateu.edu/tuition", types.DomainNone, 0.9),
		result("Lakeside University", "Tuition is $58,720 for all students.", "https://lakeside.edu/cost", types.DomainNone, 0.8),
	}}
	for _, format := range []types.OutputFormat{types.FormatTable, types.FormatJSON, types.FormatDecisionTree} {
		p := newPipeline(t, retriever)
		ans, err := p.Answer(context.Background(), "What do the two universities charge?", Options{Format: format})
		require.NoError(t, err)
		assert.False(t, ans.ShouldAbstain, "format %s reason: %s", format, ans.AbstainReason)
		assert.True(t, ans.SchemaValid, "format %s:\n%s", format, ans.AnswerText)
	}
}
