// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve fans a question out across document store collections
// and returns merged, authority-ranked results.
// Implements: prd002-retrieval (R1-R5);
//
//	docs/ARCHITECTURE § Retrieval.
package retrieve

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/counsel-engine/internal/store"
	"github.com/pdiddy/counsel-engine/pkg/types"
)

// Defaults applied when the config leaves a knob at zero.
const (
	defaultMaxPerCollection = 5
	defaultTopK             = 8
	defaultScoreThreshold   = 0.3
	defaultWorkers          = 4
)

// Retriever queries every configured collection for a question and merges
// the results into one ranked slice. Safe for concurrent use.
type Retriever struct {
	store store.Querier
	cfg   types.RetrievalConfig
	log   *zap.Logger
}

// NewRetriever builds a retriever over the given store. A nil logger
// disables diagnostics.
func NewRetriever(q store.Querier, cfg types.RetrievalConfig, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxPerCollection <= 0 {
		cfg.MaxPerCollection = defaultMaxPerCollection
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = defaultScoreThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Retriever{store: q, cfg: cfg, log: log}
}

// Retrieve runs the question against all configured collections and returns
// ranked results above the score threshold, capped at TopK. No results is
// an empty slice with a nil error; an error is returned only when every
// collection failed at the transport level. Per R1-R2, R5.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]types.RetrievalResult, error) {
	return r.fanOut(ctx, query, r.cfg.MaxPerCollection, r.cfg.TopK, nil)
}

// RetrieveDomain re-queries all collections restricted to records tagged
// with the given domain, used to top up a synthesis pass that came up
// short on the generic retrieval. Per prd006-synthesis R2.4.
func (r *Retriever) RetrieveDomain(ctx context.Context, query string, domain types.Domain, n int) ([]types.RetrievalResult, error) {
	if n <= 0 {
		n = r.cfg.MaxPerCollection
	}
	return r.fanOut(ctx, query, n, n, map[string]string{"domain": string(domain)})
}

// fanOut queries each collection on a bounded worker pool, scores the
// records, and merges deterministically.
func (r *Retriever) fanOut(ctx context.Context, query string, perCollection, topK int, filter map[string]string) ([]types.RetrievalResult, error) {
	collections := r.cfg.Collections
	if len(collections) == 0 {
		return nil, nil
	}

	type slot struct {
		results []types.RetrievalResult
		err     error
	}
	slots := make([]slot, len(collections))

	sem := make(chan struct{}, r.cfg.Workers)
	var wg sync.WaitGroup
	for i, name := range collections {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			resp, err := r.store.Query(ctx, name, query, perCollection, filter)
			if err != nil {
				slots[i].err = err
				return
			}
			slots[i].results = r.scoreResponse(name, resp)
		}(i, name)
	}
	wg.Wait()

	var (
		merged    []types.RetrievalResult
		transport error
		failures  int
	)
	for i, s := range slots {
		if s.err != nil {
			failures++
			if errors.Is(s.err, store.ErrCollectionNotFound) {
				r.log.Warn("skipping missing collection", zap.String("collection", collections[i]))
				continue
			}
			r.log.Warn("collection query failed",
				zap.String("collection", collections[i]), zap.Error(s.err))
			if transport == nil {
				transport = &types.RetrievalError{Collection: collections[i], Err: s.err}
			}
			continue
		}
		merged = append(merged, s.results...)
	}
	if failures == len(collections) && transport != nil {
		return nil, transport
	}

	// Stable sort over a slice built in fixed collection order keeps ties
	// deterministic across runs.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	ranked := merged[:0]
	for _, res := range merged {
		if res.Score < r.cfg.ScoreThreshold {
			continue
		}
		ranked = append(ranked, res)
		if len(ranked) == topK {
			break
		}
	}
	return ranked, nil
}

// scoreResponse converts one collection's raw response into scored results
// with citations attached. Per R2.1-R2.3, R3.
func (r *Retriever) scoreResponse(collection string, resp store.QueryResponse) []types.RetrievalResult {
	out := make([]types.RetrievalResult, 0, len(resp.Documents))
	for i, doc := range resp.Documents {
		if i >= len(resp.Metadatas) || i >= len(resp.Distances) {
			break
		}
		meta := resp.Metadatas[i]
		cit := types.NewCitation(meta.SourceURL, meta.LastVerified, r.cfg.AuthoritativeDomains)
		sim := 1.0 / (1.0 + resp.Distances[i])
		out = append(out, types.RetrievalResult{
			Text:       doc,
			Meta:       meta,
			Collection: collection,
			Score:      sim * cit.AuthorityScore,
			Citations:  []types.Citation{cit},
		})
	}
	return out
}
