// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store provides document store clients behind a single query
// interface. The engine treats the store as opaque: a remote vector store
// over HTTP or a local SQLite full-text index satisfy the same contract.
// Implements: prd001-store (R1-R4);
//
//	docs/ARCHITECTURE § Document Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/counsel-engine/pkg/types"
)

// ErrCollectionNotFound reports that a queried collection does not exist.
// Callers skip the collection, log, and continue. Per R1.3.
var ErrCollectionNotFound = errors.New("collection not found")

// QueryResponse holds one collection's results as parallel slices, the
// shape the underlying stores natively return. Per R1.2.
type QueryResponse struct {
	Documents []string
	Metadatas []types.RecordMeta
	Distances []float64
}

// Querier is the document store query contract consumed by the retriever.
// Implementations must be safe for concurrent use and must validate
// metadata into RecordMeta at this boundary. Per R1.1, R2.2.
type Querier interface {
	// Query returns up to nResults records from the named collection
	// ranked by ascending distance. A missing collection returns
	// ErrCollectionNotFound; no matches return an empty response with a
	// nil error. The filter restricts results to records whose metadata
	// fields equal the given values (supported keys: kind, domain,
	// institution, state).
	Query(ctx context.Context, collection, queryText string, nResults int, filter map[string]string) (QueryResponse, error)
}

// metaFromMap validates a free-form metadata map into a RecordMeta.
// Unknown keys are dropped; a bad kind or missing source URL is an error.
// Per R2.2.
func metaFromMap(m map[string]any) (types.RecordMeta, error) {
	meta := types.RecordMeta{
		Kind:        types.RecordKind(stringField(m, "kind")),
		Institution: stringField(m, "institution"),
		Program:     stringField(m, "program"),
		State:       stringField(m, "state"),
		Domain:      types.Domain(stringField(m, "domain")),
		SourceURL:   stringField(m, "source_url"),
		AwardYear:   stringField(m, "award_year"),
		Title:       stringField(m, "title"),
	}
	if raw := stringField(m, "last_verified"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			// Seed files also use plain dates.
			t, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return types.RecordMeta{}, fmt.Errorf("parsing last_verified %q: %w", raw, err)
		}
		meta.LastVerified = t
	}
	if err := meta.Validate(); err != nil {
		return types.RecordMeta{}, err
	}
	return meta, nil
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
